package generation

import (
	"context"
	"fmt"
)

// StubGenerator answers deterministically without any upstream model. It is
// the default provider so the service runs end to end in development and in
// smoke tests with no cloud credentials.
type StubGenerator struct{}

func NewStubGenerator() *StubGenerator {
	return &StubGenerator{}
}

func (g *StubGenerator) Converse(ctx context.Context, in Input) (Output, error) {
	return Output{
		Text: fmt.Sprintf("Stub answer for intent=%s. Query: %s", in.Intent, in.UserText),
	}, nil
}
