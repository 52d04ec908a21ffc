// Package invokeai provides a client for a remote image-generation service
// built around editor-exported workflow documents.
//
// A workflow document (JSON or YAML) is loaded into an immutable model, then
// opened as a live handle whose exposed inputs are addressed by stable
// indices.  The handle builds the wire-format graph, submits it to the remote
// job queue and tracks the run to a terminal status:
//
//	srv, _ := invokeai.New(invokeai.WithBaseURL("http://localhost:9090"))
//	rt := srv.Runtime()
//	wf, _ := rt.OpenWorkflow(ctx, "workflows/text2img.json")
//	_ = wf.SetInput(0, "a lighthouse at dusk")
//	job, _ := wf.Submit(ctx, workflow.WithBoard("b1"))
//	snapshot, _ := wf.WaitForCompletion(ctx, time.Minute)
//	outputs, _ := wf.MapOutputs(snapshot)
//
// For more details see the individual sub-packages.
package invokeai
