// Package djen fetches Brazilian court notifications from the DJEN
// (Diário de Justiça Eletrônico Nacional) API and returns them in a fixed,
// LLM-friendly schema with a classified type, a nominal deadline and
// suggested actions.
//
// Quick start:
//
//	c, err := djen.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := c.Fetch(ctx, djen.Query{
//	    LawyerName: "Pedro Brandão",
//	    DateStart:  "2025-08-06",
//	    DateEnd:    "2025-08-06",
//	})
//	for _, n := range res.Notifications {
//	    fmt.Println(n.CaseNumber, n.Type, n.Deadline)
//	}
//
// Results are cached, upstream calls are coalesced and guarded by a circuit
// breaker, and callers are rate limited per client key. When DJEN is
// unavailable Fetch serves retained or canned data and marks it Stale.
//
// The Client is safe for concurrent use. Create once, reuse across requests.
package djen
