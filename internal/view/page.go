package view

import _ "embed"

//go:embed page.html
var pageHTML []byte
