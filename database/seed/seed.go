// Package seed embeds the default menu shipped with the service.
package seed

import _ "embed"

//go:embed menu.yaml
var DefaultMenu []byte
