// Package ownable implements two-step ownership: the owner nominates a pending owner and the
// transfer only completes once the nominee accepts, so ownership cannot land on an unreachable
// address.
package ownable

import (
	"github.com/rotisserie/eris"
	"github.com/xssnick/tonutils-go/address"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
	ccipaddress "github.com/argus-labs/ccip-bridge/pkg/ccip/address"
	"github.com/argus-labs/ccip-bridge/pkg/ccip/internal/tvm"
)

type Ownable2Step struct {
	Owner *address.Address
	// PendingOwner is nil when no transfer is in progress.
	PendingOwner *address.Address
}

func New(owner *address.Address) Ownable2Step {
	return Ownable2Step{Owner: owner}
}

// ProposeOwner nominates newOwner. Only the current owner may call it, and a new nomination
// replaces any earlier one.
func (o *Ownable2Step) ProposeOwner(caller, newOwner *address.Address) error {
	if !tvm.AddrEqual(caller, o.Owner) {
		return eris.Wrapf(ccip.ErrUnauthorized, "%s is not the owner", ccipaddress.RawString(caller))
	}
	if err := tvm.CheckStdAddr(newOwner, "new owner"); err != nil {
		return err
	}
	o.PendingOwner = newOwner
	return nil
}

// AcceptOwnership completes a transfer. Only the pending owner may call it.
func (o *Ownable2Step) AcceptOwnership(caller *address.Address) error {
	if o.PendingOwner == nil {
		return eris.Wrap(ccip.ErrUnauthorized, "no ownership transfer is pending")
	}
	if !tvm.AddrEqual(caller, o.PendingOwner) {
		return eris.Wrapf(ccip.ErrUnauthorized, "%s is not the pending owner", ccipaddress.RawString(caller))
	}
	o.Owner = o.PendingOwner
	o.PendingOwner = nil
	return nil
}

// IsOwner reports whether a is the current owner.
func (o Ownable2Step) IsOwner(a *address.Address) bool {
	return tvm.AddrEqual(a, o.Owner)
}

// Store writes owner, a presence bit and, when set, the pending owner.
func (o Ownable2Step) Store(w *tvm.Writer) *tvm.Writer {
	w.Addr(o.Owner, "owner").Bool(o.PendingOwner != nil, "pending owner presence")
	if o.PendingOwner != nil {
		w.Addr(o.PendingOwner, "pending owner")
	}
	return w
}

func Load(r *tvm.Reader) Ownable2Step {
	o := Ownable2Step{Owner: r.Addr("owner")}
	if r.Bool("pending owner presence") {
		o.PendingOwner = r.Addr("pending owner")
	}
	return o
}
