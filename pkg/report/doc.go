// Package report composes the human-readable documents derived from a
// canonical layout and its cost summary.
//
// Every composer is a pure function of its inputs: it holds no state, may
// be called in any order, and writes a complete document to the supplied
// writer. Room areas come from [layout.Room.AreaM2] and totals from
// [cost.Summary], so the reports and the JSON result never disagree.
//
//   - [ComposeTechnical]: rooms table and enumerated sprinkler positions (PDF)
//   - [ComposeFinancial]: totals and estimated cost with the currency (PDF)
//   - [ComposeFinancialWorkbook]: the same figures as an XLSX workbook
//
// [layout.Room.AreaM2]: github.com/AmineJanedi/RAG-AI-Project/pkg/layout
// [cost.Summary]: github.com/AmineJanedi/RAG-AI-Project/pkg/cost
package report
