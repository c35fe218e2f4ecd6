package llm

import "context"

// MockProvider is a test double implementing Provider with a scripted
// sequence of responses, one per call. Exhausting the script repeats the
// last entry. Grounded on the teacher's preference for small hand-rolled
// fakes over a mocking framework (pogo has no mock library dependency).
type MockProvider struct {
	Responses []MockResponse
	calls     int
	Calls     []MockCall
}

// MockResponse is one scripted reply.
type MockResponse struct {
	Text string
	Err  error
}

// MockCall records one invocation for assertions.
type MockCall struct {
	Prompt string
	Images int
	Opts   Options
}

func (m *MockProvider) GenerateJSON(_ context.Context, images []ImagePart, prompt string, opts Options) (string, error) {
	m.Calls = append(m.Calls, MockCall{Prompt: prompt, Images: len(images), Opts: opts})

	if len(m.Responses) == 0 {
		return "", nil
	}
	idx := m.calls
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.calls++
	r := m.Responses[idx]
	return r.Text, r.Err
}
