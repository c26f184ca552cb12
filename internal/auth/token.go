// Package auth builds the static token header the LDA API expects.
package auth

// DefaultHeader is used when no header name is given.
const DefaultHeader = "Authorization"

// Header returns the single-entry header map {headerName: "Token <key>"}.
func Header(key, headerName string) map[string]string {
	if headerName == "" {
		headerName = DefaultHeader
	}
	return map[string]string{headerName: "Token " + key}
}
