package gateway

// User-facing message bag. Kept in one place so wording changes do not touch
// handler logic.
const (
	msgOnboarding = "Hi! This bot manages the marketplace parsers.\n" +
		"If you already have access, send your token.\n" +
		"Otherwise introduce yourself with your name and department to request access:"
	msgTokenActivated = "Token activated. Send /start to begin browsing."
	msgRequestSent    = "Request sent, waiting for confirmation..."

	msgAccessGranted = "You have been granted access.\n" +
		"Your token: %s\n" +
		"(Do not share it with anyone!)\n" +
		"Send /start to begin browsing."
	msgAccessDenied  = "Your access request was declined."
	msgAccessBlocked = "Your access request was blocked!"

	msgChooseStore   = "Choose a store:"
	msgListingHeader = "Pages being parsed:\n(Tap a link to expand it)"
	msgAddPrompt     = "Send the address of the link to add:"
	msgLinkAdded     = "Link added! You can keep adding..."

	msgUnknownInput       = "Unknown input."
	msgNoAccess           = "No access. Send /start to request it."
	msgBackendUnreachable = "The service is unavailable right now, try again later."

	msgSearchNotFoundTitle = "Not found"
	msgSearchNotFoundDesc  = "Sorry, we could not find anything("
	msgSearchNotFoundBody  = "Nothing found for <b>%s</b>. Try to type something else."

	msgDetailsFallback = "This product has not been parsed yet. " +
		"Meanwhile you can open it directly: %s"

	btnFinish  = "Finish!"
	btnAdd     = "Add"
	btnSearch  = "Product search"
	btnBack    = "<= Back"
	btnDelete  = "❌"
	btnDetails = "Details"

	accessCard = "Access request from [%s]:\n%s"
)

// searchMarker prefixes every inline query the gateway owns; the market is
// carried between the brackets.
const searchMarker = "Search in ["
