// Package server implements the MCP (Model Context Protocol) server for floor
// plan store extraction.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image sessions:
//   - floorplan_load: Load a plan and report its metadata
//   - floorplan_unload: Drop one or all cached plans
//   - floorplan_sample_color: Read a pixel and suggest a color range
//   - floorplan_region_preview: Crop a region for visual review
//
// Pipeline:
//   - floorplan_detect_regions: Color-range store detection
//   - floorplan_enhance_prompt: Add boundary guidance points to clicks
//   - floorplan_predict: Oracle prediction, refinement and ranking
//   - floorplan_assign_labels: Bind store names to regions
//   - floorplan_extract_stores: Detection plus labeling as an export document
//   - floorplan_overlay: Draw outlines over the plan
//
// Health:
//   - floorplan_status: Oracle health, catalog and cached plans
//
// # Sessions
//
// Every tool names its plan by path, and the path is the cache key. There is
// no "current image": two requests against different plans never share
// state, so tools can be called in any order and from concurrent clients.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// floorplan_predict is the exception: a failed prediction is an ordinary
// result of the form {"success": false, "message": "..."}.
package server
