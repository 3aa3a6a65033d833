package main

import (
	"errors"

	"github.com/BertoldVdb/mt-tools/mthal"
	"github.com/BertoldVdb/mt-tools/mthal/fwimage"
)

const (
	exitOK            = 0
	exitFailure       = 1
	exitLink          = 2
	exitVerify        = 3
	exitInvalidFormat = 4
)

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	if errors.Is(err, fwimage.ErrInvalidHeader) {
		return exitInvalidFormat
	}
	if errors.Is(err, mthal.ErrorReadVerifyFailed) || errors.Is(err, mthal.ErrorWriteVerifyFailed) {
		return exitVerify
	}

	var transportErr *mthal.TransportError
	var protocolErr *mthal.ProtocolError
	var flashErr *mthal.FlashError
	if errors.As(err, &transportErr) || errors.As(err, &protocolErr) || errors.As(err, &flashErr) {
		return exitLink
	}

	return exitFailure
}
