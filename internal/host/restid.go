package host

import (
	"strings"

	"github.com/nhle/mail-headers/internal/headers"
)

// ewsToRest maps the standard base64 alphabet of an EWS item id to the
// URL-safe alphabet the REST API expects.
var ewsToRest = strings.NewReplacer("/", "-", "+", "_")

// ConvertToRestID converts an EWS item id into a REST id. Only the v1.0
// and v2.0 schemes are known; both use the same mapping. Unknown versions
// return the id unchanged with ok set to false.
func ConvertToRestID(ewsID string, version headers.RestVersion) (restID string, ok bool) {
	switch version {
	case headers.RestVersionV1, headers.RestVersionV2:
		return ewsToRest.Replace(ewsID), true
	default:
		return ewsID, false
	}
}
