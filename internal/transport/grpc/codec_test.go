package grpc

import (
	"strings"
	"testing"

	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestJSONCodec_RoundTrip(t *testing.T) {
	c := jsonCodec{}

	in := &SearchRequest{CollectionName: "notes", Query: "hello", Limit: 5}
	data, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	out := new(SearchRequest)
	if err := c.Unmarshal(data, out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if out.CollectionName != "notes" || out.Query != "hello" || out.Limit != 5 {
		t.Errorf("round trip = %+v", out)
	}
}

func TestJSONCodec_ProtoMessagesUseProtojson(t *testing.T) {
	c := jsonCodec{}

	in := &healthpb.HealthCheckRequest{Service: ServiceName}
	data, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(data), `"service"`) {
		t.Errorf("payload = %s, want canonical proto field name", data)
	}

	out := new(healthpb.HealthCheckRequest)
	if err := c.Unmarshal(data, out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if out.GetService() != ServiceName {
		t.Errorf("Service = %q, want %q", out.GetService(), ServiceName)
	}
}

func TestJSONCodec_RegisteredUnderName(t *testing.T) {
	if got := (jsonCodec{}).Name(); got != CodecName {
		t.Errorf("Name() = %q, want %q", got, CodecName)
	}
	if encoding.GetCodec(CodecName) == nil {
		t.Errorf("codec %q is not registered", CodecName)
	}
}
