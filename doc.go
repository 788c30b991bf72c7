// Package searchdsl is a Go client for OpenSearch search requests built
// from typed query clauses, with responses whose aggregations decode into
// typed bucket trees.
//
// Queries are composed with package query and aggregation results are read
// with package aggregation. The client itself only serializes requests and
// decodes responses; network access goes through a Transport.
//
// # Building a request
//
//	req := searchdsl.NewRequest().
//	    Query(query.Bool().
//	        Must(query.Match("title", "running shoes")).
//	        Filter(query.Term("brand", "acme"))).
//	    Aggregation("per_day", map[string]any{
//	        "date_histogram": map[string]any{"field": "ts", "calendar_interval": "day"},
//	    }).
//	    Size(10)
//
//	client, _ := searchdsl.New(transport, searchdsl.WithTypedKeys())
//	resp, _ := client.Search(ctx, "products", req)
//
// # Reading aggregations
//
//	perDay, _ := resp.Aggregations.Get("per_day")
//	for _, b := range aggregation.BucketsOf[aggregation.DateHistogramBucket](perDay) {
//	    fmt.Println(b.Label(), b.DocCount)
//	}
package searchdsl
