package stream

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

const sampleStream = `data: {"type":"token","content":"Hel"}
data: {"type":"token","content":"lo"}

data: {"type":"plan","plan_data":"{\"type\":\"single\",\"strategy\":\"x\"}"}
data: {"type":"done"}
`

var sampleEnvelopes = []Envelope{
	{Type: TypeToken, Content: "Hel"},
	{Type: TypeToken, Content: "lo"},
	{Type: TypePlan, PlanData: `{"type":"single","strategy":"x"}`},
	{Type: TypeDone},
}

// decodeAll feeds the stream to a fresh decoder in fixed-size chunks.
func decodeAll(t *testing.T, input string, chunkSize int) []Envelope {
	t.Helper()
	d := NewDecoder()
	var got []Envelope
	for i := 0; i < len(input); i += chunkSize {
		end := i + chunkSize
		if end > len(input) {
			end = len(input)
		}
		got = append(got, d.Decode([]byte(input[i:end]))...)
	}
	got = append(got, d.Flush()...)
	return got
}

func TestDecoder_ChunkBoundaryInvariance(t *testing.T) {
	whole := decodeAll(t, sampleStream, len(sampleStream))
	if !reflect.DeepEqual(whole, sampleEnvelopes) {
		t.Fatalf("whole-stream decode = %+v, want %+v", whole, sampleEnvelopes)
	}

	// Every chunk size, including pathological 1-byte slicing, must
	// produce the identical envelope sequence.
	for size := 1; size <= len(sampleStream); size++ {
		got := decodeAll(t, sampleStream, size)
		if !reflect.DeepEqual(got, whole) {
			t.Fatalf("chunk size %d: got %+v, want %+v", size, got, whole)
		}
	}
}

func TestDecoder_SkipsMalformedLines(t *testing.T) {
	input := "data: {not json}\n" +
		"data: {\"type\":\"token\",\"content\":\"ok\"}\n" +
		": comment line\n" +
		"data: \n" +
		"data: {\"type\":\"done\"}\n"

	got := decodeAll(t, input, 7)
	want := []Envelope{
		{Type: TypeToken, Content: "ok"},
		{Type: TypeDone},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestDecoder_FlushParsesTrailingLine(t *testing.T) {
	d := NewDecoder()
	if envs := d.Decode([]byte(`data: {"type":"done"}`)); len(envs) != 0 {
		t.Fatalf("unterminated line emitted early: %+v", envs)
	}
	envs := d.Flush()
	if len(envs) != 1 || envs[0].Type != TypeDone {
		t.Errorf("Flush() = %+v, want single done envelope", envs)
	}
}

func TestDecoder_FlushDiscardsGarbage(t *testing.T) {
	d := NewDecoder()
	d.Decode([]byte(`data: {"type":"tok`))
	if envs := d.Flush(); envs != nil {
		t.Errorf("Flush() = %+v, want nil", envs)
	}
}

func TestDecoder_CRLFLines(t *testing.T) {
	got := decodeAll(t, "data: {\"type\":\"token\",\"content\":\"a\"}\r\ndata: {\"type\":\"done\"}\r\n", 5)
	want := []Envelope{
		{Type: TypeToken, Content: "a"},
		{Type: TypeDone},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestConsume(t *testing.T) {
	var got []Envelope
	err := Consume(context.Background(), strings.NewReader(sampleStream), func(e Envelope) bool {
		got = append(got, e)
		return true
	})
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if !reflect.DeepEqual(got, sampleEnvelopes) {
		t.Errorf("got %+v, want %+v", got, sampleEnvelopes)
	}
}

func TestConsume_HandlerStop(t *testing.T) {
	count := 0
	err := Consume(context.Background(), strings.NewReader(sampleStream), func(e Envelope) bool {
		count++
		return false
	})
	if !errors.Is(err, ErrStopped) {
		t.Errorf("Consume() error = %v, want ErrStopped", err)
	}
	if count != 1 {
		t.Errorf("handler called %d times, want 1", count)
	}
}

func TestConsume_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Consume(ctx, strings.NewReader(sampleStream), func(Envelope) bool { return true })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Consume() error = %v, want context.Canceled", err)
	}
}

// errReader returns some data then a non-EOF error.
type errReader struct {
	data []byte
	err  error
	done bool
}

func (r *errReader) Read(p []byte) (int, error) {
	if !r.done {
		r.done = true
		n := copy(p, r.data)
		return n, nil
	}
	return 0, r.err
}

func TestConsume_ReadError(t *testing.T) {
	boom := errors.New("connection reset")
	var got []Envelope
	err := Consume(context.Background(), &errReader{
		data: []byte("data: {\"type\":\"token\",\"content\":\"x\"}\n"),
		err:  boom,
	}, func(e Envelope) bool {
		got = append(got, e)
		return true
	})
	if !errors.Is(err, boom) {
		t.Errorf("Consume() error = %v, want %v", err, boom)
	}
	if len(got) != 1 || got[0].Content != "x" {
		t.Errorf("envelopes before error = %+v, want the decoded token", got)
	}
}

func TestEnvelope_IsTerminal(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
		want bool
	}{
		{"token", Envelope{Type: TypeToken}, false},
		{"plan", Envelope{Type: TypePlan}, false},
		{"done", Envelope{Type: TypeDone}, true},
		{"error", Envelope{Type: TypeError}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.env.IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

var _ io.Reader = (*errReader)(nil)
