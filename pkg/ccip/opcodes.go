package ccip

// Message opcodes understood by the TON router and receiver.
const (
	OpcodeCCIPSend       uint32 = 0x31768d95
	OpcodeReceive        uint32 = 0xb3126df1
	OpcodeReceiveConfirm uint32 = 0x28f4166f
)

// GenericExtraArgsV2Tag prefixes GenericExtraArgsV2 in both the ABI and the cell encodings.
const GenericExtraArgsV2Tag uint32 = 0x181dcf10

// FacilityID namespaces the receiver's exit codes: code = FacilityID*100 + local code.
const FacilityID uint32 = 346

// Local error codes of the receiver facility.
const (
	LocalCodeUnauthorized uint32 = 0
	LocalCodeRejectAll    uint32 = 1
)

// ExitCode returns the facility-scoped exit code for a local error code.
func ExitCode(local uint32) uint32 {
	return FacilityID*100 + local
}

// Well-known widths in bits.
const (
	OpcodeBits        = 32
	QueryIDBits       = 64
	ChainSelectorBits = 64
	RootIDBits        = 224
	Uint256Bits       = 256
)
