// Copyright 2023 Gustavo C. Viegas. All rights reserved.

//go:build windows && (amd64 || arm64)

package ctxt

import (
	_ "github.com/gviegas/rendercore/driver/d3d12"
)

func init() {
	preferred = append(preferred, "d3d12")
}
