package roomyconnect

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/castaneai/roomy"
)

// ErrorStatusHeader carries the exact roomy.ErrorStatus, which connect codes cannot tell apart.
const ErrorStatusHeader = "Roomy-Error-Status"

func toConnectError(err error) error {
	status := roomy.StatusOf(err)
	ce := connect.NewError(connectCode(status), errors.New(roomy.ErrorMessage(err)))
	ce.Meta().Set(ErrorStatusHeader, string(status))
	return ce
}

func connectCode(status roomy.ErrorStatus) connect.Code {
	switch status {
	case roomy.ErrorStatusInvalidInput:
		return connect.CodeInvalidArgument
	case roomy.ErrorStatusNotFound, roomy.ErrorStatusActivityNotFound:
		return connect.CodeNotFound
	case roomy.ErrorStatusAlreadyExists:
		return connect.CodeAlreadyExists
	case roomy.ErrorStatusSlotConflict, roomy.ErrorStatusRoomUnavailable:
		return connect.CodeFailedPrecondition
	case roomy.ErrorStatusMethodNotAllowed:
		return connect.CodeUnimplemented
	case roomy.ErrorStatusUpstreamUnavailable:
		return connect.CodeUnavailable
	}
	return connect.CodeUnknown
}

// fromConnectError turns a client-side error back into a roomy error.
// Anything the service did not answer itself is ErrorStatusUpstreamUnavailable.
func fromConnectError(err error) error {
	var ce *connect.Error
	if !errors.As(err, &ce) {
		return roomy.NewError(roomy.ErrorStatusUpstreamUnavailable, err)
	}
	if status, ok := roomy.ParseErrorStatus(ce.Meta().Get(ErrorStatusHeader)); ok {
		if status == roomy.ErrorStatusUpstreamUnavailable {
			return roomy.NewError(status, err)
		}
		return roomy.NewError(status, errors.New(ce.Message()))
	}
	switch ce.Code() {
	case connect.CodeInvalidArgument:
		return roomy.NewError(roomy.ErrorStatusInvalidInput, errors.New(ce.Message()))
	case connect.CodeNotFound:
		return roomy.NewError(roomy.ErrorStatusNotFound, errors.New(ce.Message()))
	case connect.CodeAlreadyExists:
		return roomy.NewError(roomy.ErrorStatusAlreadyExists, errors.New(ce.Message()))
	case connect.CodeFailedPrecondition:
		return roomy.NewError(roomy.ErrorStatusSlotConflict, errors.New(ce.Message()))
	case connect.CodeUnknown, connect.CodeInternal:
		return roomy.NewError(roomy.ErrorStatusUnknown, err)
	}
	return roomy.NewError(roomy.ErrorStatusUpstreamUnavailable, err)
}
