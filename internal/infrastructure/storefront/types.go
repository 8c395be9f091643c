package storefront

import "encoding/json"

// graphqlRequest is the envelope of every GraphQL call.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse is the generic GraphQL envelope. Data is decoded per
// mutation once transport-level errors are ruled out.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// userError is a mutation-level validation failure. The platform returns
// these with HTTP 200, so they are checked on every mutation payload.
type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type draftOrderPayload struct {
	DraftOrder struct {
		ID string `json:"id"`
	} `json:"draftOrder"`
	UserErrors []userError `json:"userErrors"`
}

type draftOrderCreateData struct {
	DraftOrderCreate draftOrderPayload `json:"draftOrderCreate"`
}

type draftOrderUpdateData struct {
	DraftOrderUpdate draftOrderPayload `json:"draftOrderUpdate"`
}

type draftOrderCompleteData struct {
	DraftOrderComplete struct {
		DraftOrder struct {
			ID    string `json:"id"`
			Order struct {
				ID string `json:"id"`
			} `json:"order"`
		} `json:"draftOrder"`
		UserErrors []userError `json:"userErrors"`
	} `json:"draftOrderComplete"`
}

// addressInput mirrors the platform's mailing address input object.
type addressInput struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type appliedDiscountInput struct {
	ValueType string `json:"valueType"`
	Value     string `json:"value"`
}

type lineItemInput struct {
	VariantID       string                `json:"variantId"`
	Quantity        int                   `json:"quantity"`
	AppliedDiscount *appliedDiscountInput `json:"appliedDiscount,omitempty"`
}

type shippingLineInput struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

// transactionRequest is the REST settlement payload posted against a
// completed order.
type transactionRequest struct {
	Transaction transactionBody `json:"transaction"`
}

type transactionBody struct {
	Kind    string `json:"kind"`
	Gateway string `json:"gateway"`
	Source  string `json:"source"`
}
