// Package intramind provides a Go client for the IntraMind REST gateway.
//
// # Low-level API
//
//	client, _ := intramind.New("http://localhost:64536",
//	    intramind.WithAPIKey(os.Getenv("INTRAMIND_API_KEY")),
//	)
//	client.Collections().Create(ctx, "articles",
//	    intramind.WithDescription("internal KB articles"),
//	    intramind.WithMetadataField("author", intramind.FieldString),
//	)
//	client.Documents("articles").BatchUpsert(ctx, docs)
//	results, _ := client.Search("articles").Query(ctx, "vacation policy", nil)
//
// # High-level API: typed indexes
//
//	type Article struct {
//	    ID     string  `intramind:"articleId,id"`
//	    Body   string  `intramind:"body,content"`
//	    Author string  `intramind:"author,string"`
//	    Year   float64 `intramind:"year,number"`
//	}
//
//	idx, _ := intramind.NewIndex[Article](client, "articles")
//	_ = idx.Ensure(ctx)
//	_, _ = idx.UpsertBatch(ctx, articles)
//	hits, _ := idx.Search().Query("hiring process").Where("author", "hr").Limit(5).Do(ctx)
//
// All operations go over HTTP to the gateway; failures surface as *APIError
// values that match the package sentinels via errors.Is.
package intramind
