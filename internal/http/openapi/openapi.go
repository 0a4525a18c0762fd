// Package openapi carries the service's OpenAPI document for /openapi.yaml
// and the docs page.
package openapi

import _ "embed"

//go:embed openapi.yaml
var YAML []byte
