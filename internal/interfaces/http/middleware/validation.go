package middleware

import (
	"net/url"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator registers custom binding validations with gin's validator
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("marketplace_url", validMarketplaceURL)
	}
}

// validMarketplaceURL accepts absolute https URLs without query or fragment.
// Source URLs are stored verbatim and matched byte for byte against webhook
// headers, so anything ambiguous is rejected at the door.
func validMarketplaceURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != "" && u.RawQuery == "" && u.Fragment == ""
}
