// Package sommelier is a Go client for the sommelier question answering API.
//
//	client, _ := sommelier.New("http://localhost:8080", sommelier.WithAPIKey(key))
//	ans, _ := client.Ask(ctx, "Is the tasting room open on Saturday?")
//	fmt.Println(ans.Text, ans.Sources)
//
// Follow-up questions that answer a clarification must carry the same session id:
//
//	ans, _ := client.Ask(ctx, "tell me about rosé", sommelier.InSession("visitor-42"))
//	if ans.Clarification {
//	    ans, _ = client.Ask(ctx, "the sparkling one", sommelier.InSession("visitor-42"))
//	}
package sommelier
