package searchdsl

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kailas-cloud/searchdsl/aggregation"
)

func TestDecodeResponse_NestedAggregations(t *testing.T) {
	body := `{"took":3,"timed_out":false,"hits":{"total":{"value":9,"relation":"gte"},"max_score":null,"hits":[]},
	"aggregations":{"histogram":{"buckets":[
		{"key_as_string":"2024-01-01","key":1704067200000,"doc_count":2},
		{"key_as_string":"2024-01-02","key":1704153600000,"doc_count":4,
			"aggregations":{"terms":{"buckets":[{"key":"a","doc_count":3},{"key":"b","doc_count":1}]}}},
		{"key_as_string":"2024-01-03","key":1704240000000,"doc_count":3}
	]}}}`

	resp, err := decodeResponse([]byte(body), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Hits.Total.Relation != "gte" || resp.Hits.MaxScore != nil {
		t.Errorf("unexpected hits: %+v", resp.Hits)
	}

	hist, ok := resp.Aggregations.Get("histogram")
	if !ok {
		t.Fatal("expected histogram aggregation")
	}
	days := aggregation.BucketsOf[aggregation.DateHistogramBucket](hist)
	if len(days) != 3 {
		t.Fatalf("expected 3 date histogram buckets, got %d", len(days))
	}
	terms, ok := days[1].Aggregations.Get("terms")
	if !ok {
		t.Fatal("expected terms under the middle bucket")
	}
	if got := aggregation.BucketsOf[aggregation.TermsBucket](terms); len(got) != 2 {
		t.Errorf("expected 2 terms buckets, got %d", len(got))
	}
	if days[0].Aggregations.Len() != 0 || days[2].Aggregations.Len() != 0 {
		t.Error("outer buckets must have no sub-aggregations")
	}
}

func TestResponse_MarshalOmitsEmptyAggregations(t *testing.T) {
	resp, err := decodeResponse([]byte(`{"took":1,"hits":{"hits":[]}}`), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(data), "aggregations") {
		t.Errorf("expected no aggregations key, got %s", data)
	}
}

func TestTotalHits_LegacyNumber(t *testing.T) {
	var h Hits
	if err := json.Unmarshal([]byte(`{"total":12,"hits":[]}`), &h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Total.Value != 12 || h.Total.Relation != "eq" {
		t.Errorf("unexpected total: %+v", h.Total)
	}
}

func TestSourceAs(t *testing.T) {
	type doc struct {
		Msg string `json:"msg"`
	}
	h := Hit{Index: "logs", ID: "1", Source: json.RawMessage(`{"msg":"hello"}`)}
	d, err := SourceAs[doc](h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Msg != "hello" {
		t.Errorf("msg = %q", d.Msg)
	}

	if _, err := SourceAs[doc](Hit{ID: "2"}); err == nil {
		t.Error("expected error for hit without _source")
	}
}

func TestDecodeResponse_Malformed(t *testing.T) {
	if _, err := decodeResponse([]byte(`{"took":"soon"}`), false); err == nil {
		t.Fatal("expected error for non-numeric took")
	}
}
