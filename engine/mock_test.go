package engine_test

import (
	gomock "go.uber.org/mock/gomock"

	"i4.energy/across/qube/engine"
)

// MockSequenceBuilder collects ordered transport expectations for the
// frames a Link is expected to write.
type MockSequenceBuilder struct {
	transport *engine.MockTransport
	calls     []*gomock.Call
}

func NewMockSequence(transport *engine.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		calls:     []*gomock.Call{},
	}
}

// Frame expects frame to be written in full.
func (b *MockSequenceBuilder) Frame(frame []byte) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Write(frame).Return(len(frame), nil),
	)
	return b
}

// Startup expects the probe device's startup frames in table order.
func (b *MockSequenceBuilder) Startup() *MockSequenceBuilder {
	return b.Frame(frame("AB", "@")).Frame([]byte("$VR*04\n"))
}

// Build returns the expectations in a form gomock.InOrder accepts.
func (b *MockSequenceBuilder) Build() []any {
	out := make([]any, len(b.calls))
	for i, c := range b.calls {
		out[i] = c
	}
	return out
}
