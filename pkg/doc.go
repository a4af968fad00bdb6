// Package pkg provides the core libraries for FireAI layout synthesis.
//
// # Overview
//
// FireAI turns a free-text design request, or a structured layout supplied
// by the caller, into three artifacts: a DXF drawing, a technical report and
// a financial report. The pkg directory is organized into four areas:
//
//  1. Domain: [layout] (canonical geometry and normalization) and [cost]
//  2. Generation: [retrieval], [synth], [render/dxf] and [report]
//  3. Infrastructure: [cache], [artifact], [config], [stream], [httputil],
//     [observability] and [errors]
//  4. Surfaces: [pipeline] (orchestration) and [server] (HTTP)
//
// # Architecture
//
// The data flow of one invocation:
//
//	prompt ─→ [retrieval] snippets ─→ [synth] model reply ─┐
//	                                                       ├─→ [layout] canonical layout
//	upload / inline layout JSON ───────────────────────────┘
//	                                      ↓
//	            ┌─────────────────────────┴──────────────┐
//	      [render/dxf] drawing          [cost] summary → [report] PDF / XLSX
//	            └─────────────────────────┬──────────────┘
//	                                      ↓
//	                           [artifact] store + URLs
//
// # Quick Start
//
// Run the pipeline over a layout without a model:
//
//	store, _ := artifact.NewStore("backend_outputs")
//	runner := pipeline.NewRunner(store, nil)
//	res := runner.Execute(ctx, pipeline.Request{LayoutJSON: data})
//	fmt.Println(res.Files.Geometry)
//
// Serve the HTTP API:
//
//	srv := server.New(runner, synthesizer, store, server.WithRetriever(index))
//	srv.ListenAndServe(ctx, ":8000")
//
// [layout]: github.com/AmineJanedi/RAG-AI-Project/pkg/layout
// [cost]: github.com/AmineJanedi/RAG-AI-Project/pkg/cost
// [retrieval]: github.com/AmineJanedi/RAG-AI-Project/pkg/retrieval
// [synth]: github.com/AmineJanedi/RAG-AI-Project/pkg/synth
// [render/dxf]: github.com/AmineJanedi/RAG-AI-Project/pkg/render/dxf
// [report]: github.com/AmineJanedi/RAG-AI-Project/pkg/report
// [cache]: github.com/AmineJanedi/RAG-AI-Project/pkg/cache
// [artifact]: github.com/AmineJanedi/RAG-AI-Project/pkg/artifact
// [config]: github.com/AmineJanedi/RAG-AI-Project/pkg/config
// [stream]: github.com/AmineJanedi/RAG-AI-Project/pkg/stream
// [httputil]: github.com/AmineJanedi/RAG-AI-Project/pkg/httputil
// [observability]: github.com/AmineJanedi/RAG-AI-Project/pkg/observability
// [errors]: github.com/AmineJanedi/RAG-AI-Project/pkg/errors
// [pipeline]: github.com/AmineJanedi/RAG-AI-Project/pkg/pipeline
// [server]: github.com/AmineJanedi/RAG-AI-Project/pkg/server
package pkg
