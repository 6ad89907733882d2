package json

import (
	"bytes"
	stdjson "encoding/json"
	"strings"
	"testing"
)

type recommendationPayload struct {
	QuestionID           int     `json:"question_id"`
	ProxyQuestion        string  `json:"proxy_question"`
	VotingRecommendation string  `json:"voting_recommendation"`
	Rationale            string  `json:"rationale"`
	Citation             string  `json:"citation"`
	Confidence           float64 `json:"confidence"`
}

func TestMarshalUnmarshal(t *testing.T) {
	in := recommendationPayload{
		QuestionID:           1,
		ProxyQuestion:        "Election of directors",
		VotingRecommendation: "For",
		Rationale:            "Board composition aligns with long-term value creation.",
		Citation:             "Proposal 1, page 12",
		Confidence:           0.92,
	}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	// The wrapper must stay byte-compatible with encoding/json consumers.
	var viaStd recommendationPayload
	if err := stdjson.Unmarshal(data, &viaStd); err != nil {
		t.Fatalf("Marshal() produced JSON the standard library rejects: %v", err)
	}

	var out recommendationPayload
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out != in {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", out, in)
	}

	if err := Unmarshal([]byte(`{invalid}`), &out); err == nil {
		t.Error("Unmarshal() accepted invalid JSON")
	}
}

func TestMarshalString(t *testing.T) {
	s, err := MarshalString(map[string]string{"status": "NEW"})
	if err != nil {
		t.Fatalf("MarshalString() error = %v", err)
	}
	if s != `{"status":"NEW"}` {
		t.Errorf("MarshalString() = %q", s)
	}
}

func TestEncoderDecoder(t *testing.T) {
	in := recommendationPayload{QuestionID: 7, VotingRecommendation: "Against", Confidence: 0.4}

	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(in); err != nil {
		t.Fatalf("Encoder.Encode() error = %v", err)
	}

	var out recommendationPayload
	if err := NewDecoder(strings.NewReader(buf.String())).Decode(&out); err != nil {
		t.Fatalf("Decoder.Decode() error = %v", err)
	}
	if out != in {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", out, in)
	}
}

// TestConcurrentMarshalUnmarshal 测试并发调用 Marshal/Unmarshal 的安全性。
func TestConcurrentMarshalUnmarshal(t *testing.T) {
	const goroutines = 50
	const iterations = 100

	in := recommendationPayload{QuestionID: 1, VotingRecommendation: "For", Confidence: 0.9}
	errChan := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			for j := 0; j < iterations; j++ {
				data, err := Marshal(in)
				if err != nil {
					errChan <- err
					return
				}
				var out recommendationPayload
				if err := Unmarshal(data, &out); err != nil {
					errChan <- err
					return
				}
			}
			errChan <- nil
		}()
	}

	for i := 0; i < goroutines; i++ {
		if err := <-errChan; err != nil {
			t.Errorf("并发测试失败: %v", err)
		}
	}
}
