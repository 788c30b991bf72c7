// Package aggregation decodes the aggregations section of a search
// response into a tree of named results and typed buckets.
//
// Responses carry no bucket type, so each bucket object is matched against
// the bucket shapes in the order returned by Kinds; the first shape that
// accepts every key of the object wins. Names written with typed_keys
// ("sterms#by_tag") select the shape directly.
//
//	aggs, err := aggregation.Decode(resp.Aggregations)
//	if err != nil {
//		return err
//	}
//	perDay, _ := aggs.Get("per_day")
//	for _, b := range aggregation.BucketsOf[aggregation.DateHistogramBucket](perDay) {
//		fmt.Println(b.Label(), b.DocCount)
//	}
package aggregation
