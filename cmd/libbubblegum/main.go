// Command libbubblegum builds the Bubblegum boundary as a C shared library:
//
//	go build -buildmode=c-shared -o libbubblegum.so ./cmd/libbubblegum
//
// Every exported function returns a status (0 on success, 1 on failure) and
// writes a C string holding either the result or the failure text to out. The
// caller owns the string and releases it with bubblegum_free.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-bubblegum/pkg/bubblegum"
	"github.com/code-payments/code-bubblegum/pkg/bubblegum/nif"
)

const (
	statusOk      C.int = 0
	statusFailure C.int = 1
)

var (
	boundary *nif.Boundary
	initErr  error
)

func init() {
	config, err := nif.LoadConfig()
	if err != nil {
		initErr = err
		logrus.StandardLogger().WithField("type", "libbubblegum").WithError(err).Error("failed to load config")
		return
	}

	app, err := nif.Init(config)
	if err != nil {
		initErr = err
		logrus.StandardLogger().WithField("type", "libbubblegum").WithError(err).Error("failed to initialize")
		return
	}

	boundary = nif.New(config, app)
}

func respond(out **C.char, value string, failure *bubblegum.Failure) C.int {
	if failure != nil {
		*out = C.CString(failure.Error())
		return statusFailure
	}
	*out = C.CString(value)
	return statusOk
}

func respondInitError(out **C.char) C.int {
	*out = C.CString(bubblegum.Translate(initErr).Error())
	return statusFailure
}

//export bubblegum_create_tree_config
func bubblegum_create_tree_config(maxDepth C.int, maxBufferSize C.uint, authority *C.char, out **C.char) C.int {
	if boundary == nil {
		return respondInitError(out)
	}

	sig, failure := boundary.CreateTreeConfig(int32(maxDepth), uint32(maxBufferSize), C.GoString(authority))
	return respond(out, sig, failure)
}

//export bubblegum_mint_v1
func bubblegum_mint_v1(name, symbol, uri, collection, recipient *C.char, out **C.char) C.int {
	if boundary == nil {
		return respondInitError(out)
	}

	sig, failure := boundary.MintV1(
		C.GoString(name),
		C.GoString(symbol),
		C.GoString(uri),
		C.GoString(collection),
		C.GoString(recipient),
	)
	return respond(out, sig, failure)
}

//export bubblegum_transfer
func bubblegum_transfer(assetId, owner, recipient *C.char, out **C.char) C.int {
	if boundary == nil {
		return respondInitError(out)
	}

	sig, failure := boundary.Transfer(C.GoString(assetId), C.GoString(owner), C.GoString(recipient))
	return respond(out, sig, failure)
}

//export bubblegum_clear_cache
func bubblegum_clear_cache(out **C.char) C.int {
	if boundary == nil {
		return respondInitError(out)
	}

	msg, failure := boundary.ClearCache()
	return respond(out, msg, failure)
}

//export bubblegum_free
func bubblegum_free(value *C.char) {
	C.free(unsafe.Pointer(value))
}

func main() {}
