package models

// Field mnemonics used by the market-data gateway.
const (
	FieldBid  = "PX_BID"
	FieldAsk  = "PX_ASK"
	FieldLast = "PX_LAST"
)

// SecurityData is one raw provider record: a security id plus whatever fields
// the gateway returned for it. A nil field value means the provider had no
// quote for that field.
type SecurityData struct {
	SecurityID string              `json:"security_id"`
	Fields     map[string]*float64 `json:"fields"`
	Success    bool                `json:"success"`
	Error      string              `json:"error,omitempty"`
}

// Field returns the named field value, nil when absent.
func (s SecurityData) Field(name string) *float64 {
	if s.Fields == nil {
		return nil
	}
	return s.Fields[name]
}

// HasPair reports whether both bid and ask came back.
func (s SecurityData) HasPair() bool {
	return s.Field(FieldBid) != nil && s.Field(FieldAsk) != nil
}
