package outlook

// ExtendedProperty is a single-value extended MAPI property on a message.
type ExtendedProperty struct {
	PropertyID string  `json:"PropertyId"`
	Value      *string `json:"Value"`
}

// MessageProperties is the response from
// GET /api/v2.0/me/messages/{id}?$select=SingleValueExtendedProperties.
type MessageProperties struct {
	SingleValueExtendedProperties []ExtendedProperty `json:"SingleValueExtendedProperties"`
}

// ErrorResponse is the OData error envelope returned on non-2xx responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail holds the code and message of an OData error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
