package ccip_test

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/argus-labs/ccip-bridge/pkg/ccip"
)

func TestErrors_WrappedCategoryMatches(t *testing.T) {
	t.Parallel()

	categories := []error{
		ccip.ErrFormat,
		ccip.ErrUnsupportedExtraArgsTag,
		ccip.ErrMalformedMessage,
		ccip.ErrUnauthorized,
		ccip.ErrCorruptStorage,
	}
	for i, category := range categories {
		err := eris.Wrapf(category, "context %d", i)
		assert.ErrorIs(t, err, category)
		for j, other := range categories {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(err, other), "%v must not match %v", err, other)
		}
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(34600), ccip.ExitCode(ccip.LocalCodeUnauthorized))
	assert.Equal(t, uint32(34601), ccip.ExitCode(ccip.LocalCodeRejectAll))
}
