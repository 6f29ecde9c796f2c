package backend

import "encoding/json"

// Item is one registered parsing target of a market.
type Item struct {
	Link string `json:"link"`
}

// DeleteResult is the backend's answer to a parsing-item removal.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Product is a parsed catalog entry. Search responses fill the short fields;
// by-url lookups additionally carry brand, description and the details map.
type Product struct {
	Name        string            `json:"name"`
	Price       string            `json:"price"`
	BrandName   string            `json:"brandName"`
	Description string            `json:"description"`
	Details     map[string]string `json:"details"`
	ProductURL  string            `json:"productUrl"`
}

// looseString accepts either a JSON string or a bare number; the parsers are
// not consistent about quoting prices and attribute values.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

// UnmarshalJSON keeps the exported fields plain strings while tolerating
// numeric price and detail values on the wire.
func (p *Product) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name        string                 `json:"name"`
		Price       looseString            `json:"price"`
		BrandName   string                 `json:"brandName"`
		Description string                 `json:"description"`
		Details     map[string]looseString `json:"details"`
		ProductURL  string                 `json:"productUrl"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	p.Name = raw.Name
	p.Price = string(raw.Price)
	p.BrandName = raw.BrandName
	p.Description = raw.Description
	p.ProductURL = raw.ProductURL
	p.Details = nil
	if len(raw.Details) > 0 {
		p.Details = make(map[string]string, len(raw.Details))
		for k, v := range raw.Details {
			p.Details[k] = string(v)
		}
	}
	return nil
}
