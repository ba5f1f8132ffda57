package backend

import (
	"github.com/lhaig/idlgen/internal/capibe"
	"github.com/lhaig/idlgen/internal/clientbe"
	"github.com/lhaig/idlgen/internal/jnibe"
	"github.com/lhaig/idlgen/internal/pybe"
	"github.com/lhaig/idlgen/internal/wasmbe"
)

func init() {
	RegisterFunc(CAPI, capibe.Generate)
	RegisterFunc(Client, clientbe.Generate)
	RegisterFunc(Wasm, wasmbe.Generate)
	RegisterFunc(JNI, jnibe.Generate)
	RegisterFunc(Python, pybe.Generate)
}
