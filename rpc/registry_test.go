// Copyright 2025 R5 Labs
// This file is part of the R5 Core library.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

package rpc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type echoService struct{ calls int }

func (s *echoService) Echo(args []any) (any, error) {
	s.calls++
	return args, nil
}

// unexported methods, and exported methods with the wrong signature, must
// never be registered.
func (s *echoService) internal(args []any) (any, error) { return nil, nil }
func (s *echoService) WrongShape(a, b int) int           { return a + b }

func TestBuildRegistryDiscoversSuitableMethods(t *testing.T) {
	svc := &echoService{}
	reg, err := BuildRegistry([]API{{Namespace: "test", Service: svc}})
	require.NoError(t, err)

	op, ok := reg.Lookup("test_echo")
	require.True(t, ok)
	require.NotNil(t, op.Handler)

	_, ok = reg.Lookup("test_internal")
	require.False(t, ok)
	_, ok = reg.Lookup("test_wrongShape")
	require.False(t, ok)
}

func TestBuildRegistryEmptyNamespaceListYieldsEmptyRegistry(t *testing.T) {
	reg, err := BuildRegistry(nil)
	require.NoError(t, err)
	require.Equal(t, 0, reg.Len())
}

func TestBuildRegistryRejectsDuplicateKeys(t *testing.T) {
	svc := &echoService{}
	_, err := BuildRegistry([]API{
		{Namespace: "test", Service: svc},
		{Namespace: "test", Service: svc},
	})
	require.Error(t, err)
}

func TestRegistryDecorateRewrapsHandler(t *testing.T) {
	svc := &echoService{}
	reg, err := BuildRegistry([]API{{Namespace: "test", Service: svc}})
	require.NoError(t, err)

	var wrapped bool
	ok := reg.Decorate("test_echo", func(h func([]any) (any, error)) func([]any) (any, error) {
		return func(args []any) (any, error) {
			wrapped = true
			return h(args)
		}
	})
	require.True(t, ok)

	op, _ := reg.Lookup("test_echo")
	_, err = op.Handler([]any{"x"})
	require.NoError(t, err)
	require.True(t, wrapped)
}

func TestBoundMethodPreservesReceiverState(t *testing.T) {
	svc := &echoService{}
	reg, err := BuildRegistry([]API{{Namespace: "test", Service: svc}})
	require.NoError(t, err)

	op, _ := reg.Lookup("test_echo")
	_, _ = op.Handler([]any{1})
	_, _ = op.Handler([]any{2})
	require.Equal(t, 2, svc.calls)
}
