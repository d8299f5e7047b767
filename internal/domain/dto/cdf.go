package dto

import (
	"bytes"
	"strconv"
)

// CDFPayload is the published Constituency Development Fund allocation list.
type CDFPayload struct {
	Data []CDFRow `json:"data"`
}

type CDFRow struct {
	Constituency string     `json:"Constituency"`
	Category     string     `json:"category"`
	SubCategory  string     `json:"Sub category"`
	Amount       LooseValue `json:"Amount"`
}

// LooseValue accepts a JSON string, number or null and keeps its text.
type LooseValue string

func (v *LooseValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*v = LooseValue(s)
		return nil
	}
	*v = LooseValue(b)
	return nil
}
