package receiver

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
)

// TVM exit codes the receiver can abort with.
const (
	ExitCodeCellUnderflow uint32 = 9
	ExitCodeOutOfGas      uint32 = 13
	ExitCodeWrongOpcode   uint32 = 0xffff
	ExitCodeUnauthorized         = ccip.FacilityID*100 + ccip.LocalCodeUnauthorized
	ExitCodeRejectAll            = ccip.FacilityID*100 + ccip.LocalCodeRejectAll
)

var (
	ErrRejected        = eris.New("receiver: message rejected by behavior")
	ErrOutOfGas        = eris.New("receiver: out of gas")
	ErrNotDeployed     = eris.New("receiver: contract is not deployed")
	ErrAlreadyDeployed = eris.New("receiver: contract is already deployed")
)

// ExitError is an aborted transaction. The message bounces and storage is left untouched.
type ExitError struct {
	Code uint32
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exit(code uint32, err error) error {
	return &ExitError{Code: code, Err: err}
}
