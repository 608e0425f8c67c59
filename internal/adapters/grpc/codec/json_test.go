package codec

import (
	"testing"

	"google.golang.org/grpc/encoding"
)

func TestJSON_Registered(t *testing.T) {
	t.Parallel()

	if encoding.GetCodec(Name) == nil {
		t.Fatalf("codec %q is not registered", Name)
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	t.Parallel()

	type message struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	c := JSON{}
	b, err := c.Marshal(message{Name: "alice", Count: 2})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(b) != `{"name":"alice","count":2}` {
		t.Fatalf("unexpected payload %s", b)
	}

	var got message
	if err := c.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if got.Name != "alice" || got.Count != 2 {
		t.Fatalf("unexpected message %+v", got)
	}
}
