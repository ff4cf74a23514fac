package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Schema fragments shared by several tools.
var (
	pathProperty = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the floor plan image. The path is the session key: every call names the plan it works on.",
	}

	pointListProperty = map[string]interface{}{
		"type":        "array",
		"description": "Prompt points as [x, y] pixel pairs",
		"items": map[string]interface{}{
			"type":     "array",
			"items":    map[string]interface{}{"type": "integer"},
			"minItems": 2,
			"maxItems": 2,
		},
	}

	pointLabelsProperty = map[string]interface{}{
		"type":        "array",
		"description": "One label per point: 1 = positive (inside the store), 0 = negative. Defaults to all 1.",
		"items":       map[string]interface{}{"type": "integer", "enum": []int{0, 1}},
	}

	rgbProperty = map[string]interface{}{
		"type":     "array",
		"items":    map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 255},
		"minItems": 3,
		"maxItems": 3,
	}

	rangesProperty = map[string]interface{}{
		"type":        "array",
		"description": "Inline category color ranges. When omitted the configured catalog is used.",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"category": map[string]interface{}{"type": "string"},
				"label":    map[string]interface{}{"type": "string"},
				"color":    map[string]interface{}{"type": "string", "description": "Display color #RRGGBB"},
				"lower":    rgbProperty,
				"upper":    rgbProperty,
			},
			"required": []string{"category", "lower", "upper"},
		},
	}

	categoriesProperty = map[string]interface{}{
		"type":        "array",
		"description": "Restrict detection to these catalog categories",
		"items":       map[string]interface{}{"type": "string"},
	}

	storeLikeProperty = map[string]interface{}{
		"type":        "boolean",
		"description": "Keep only store-shaped contours (aspect < 4, solidity > 0.6, both sides > 30 px)",
	}

	minAreaProperty = map[string]interface{}{
		"type":        "integer",
		"description": "Absolute minimum region area in pixels. Default from catalog, else 2000",
	}

	labelsProperty = map[string]interface{}{
		"type":        "array",
		"description": "Label table. When omitted the catalog's labels are used.",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name":     map[string]interface{}{"type": "string"},
				"category": map[string]interface{}{"type": "string"},
				"center": map[string]interface{}{
					"type":     "array",
					"items":    map[string]interface{}{"type": "integer"},
					"minItems": 2,
					"maxItems": 2,
				},
				"radius": map[string]interface{}{"type": "number", "description": "Search radius in pixels. Default 100"},
			},
			"required": []string{"name", "category", "center"},
		},
	}

	matchingProperty = map[string]interface{}{
		"type":        "object",
		"description": "Category matching rule. When omitted the catalog's rule (or exact matching) applies.",
		"properties": map[string]interface{}{
			"flexible": map[string]interface{}{
				"type":        "string",
				"description": "Category whose labels may claim regions of any category. Empty for exact matching.",
			},
			"mode": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"label", "symmetric"},
				"description": "label: only labels of the flexible category are loose. symmetric: regions of it are loose too.",
			},
		},
	}
)

// detectionProperties returns the properties shared by tools that run
// color detection.
func detectionProperties() map[string]interface{} {
	return map[string]interface{}{
		"path":       pathProperty,
		"ranges":     rangesProperty,
		"categories": categoriesProperty,
		"store_like": storeLikeProperty,
		"min_area":   minAreaProperty,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	assignProps := detectionProperties()
	assignProps["labels"] = labelsProperty
	assignProps["matching"] = matchingProperty
	assignProps["regions"] = map[string]interface{}{
		"type":        "array",
		"description": "Regions to label. When omitted, regions are detected on path.",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":       map[string]interface{}{"type": "string"},
				"category": map[string]interface{}{"type": "string"},
				"center": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"x": map[string]interface{}{"type": "integer"},
						"y": map[string]interface{}{"type": "integer"},
					},
					"required": []string{"x", "y"},
				},
			},
			"required": []string{"category", "center"},
		},
	}

	extractProps := detectionProperties()
	extractProps["labels"] = labelsProperty
	extractProps["matching"] = matchingProperty

	overlayProps := detectionProperties()
	overlayProps["labels"] = labelsProperty
	overlayProps["matching"] = matchingProperty
	overlayProps["show_index"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Stamp each outline's legend index. Default true",
	}
	overlayProps["outlines"] = map[string]interface{}{
		"type":        "array",
		"description": "Polygons to draw instead of running extraction",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"points": pointListProperty,
				"color":  map[string]interface{}{"type": "string", "description": "#RRGGBB, default red"},
			},
			"required": []string{"points"},
		},
	}

	return []Tool{
		// Image sessions
		{
			Name:        "floorplan_load",
			Description: "Load a floor plan image and return its dimensions and format. The image stays cached under its path for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "floorplan_unload",
			Description: "Drop a cached floor plan, or every cached plan when path is omitted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
			},
		},
		{
			Name:        "floorplan_sample_color",
			Description: "Read the exact color at a pixel and suggest an inclusive color range around it, for authoring category ranges.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
					"tolerance": map[string]interface{}{
						"type":        "integer",
						"description": "Per-channel tolerance of the suggested range. Default 30",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "floorplan_region_preview",
			Description: "Crop a region's bounding box (plus padding) from the plan as base64 PNG, to eyeball a detection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"x":      map[string]interface{}{"type": "integer", "description": "Bounding box left edge"},
					"y":      map[string]interface{}{"type": "integer", "description": "Bounding box top edge"},
					"width":  map[string]interface{}{"type": "integer", "description": "Bounding box width"},
					"height": map[string]interface{}{"type": "integer", "description": "Bounding box height"},
					"pad": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context around the box. Default 10",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x", "y", "width", "height"},
			},
		},

		// Pipeline
		{
			Name:        "floorplan_detect_regions",
			Description: "Find store regions by category fill color. Returns simplified polygons, centroids, bounding boxes and pixel areas sorted by area, plus per-range statistics.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectionProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "floorplan_enhance_prompt",
			Description: "Expand click points into a richer prompt set by sampling guidance points on the border of the flat-colored blob under each positive click. Makes no oracle call.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         pathProperty,
					"points":       pointListProperty,
					"point_labels": pointLabelsProperty,
					"max_guidance_points": map[string]interface{}{
						"type":        "integer",
						"description": "Guidance points per positive click. Default 4",
					},
					"tolerance": map[string]interface{}{
						"type":        "integer",
						"description": "Per-channel color tolerance around the clicked color. Default 30",
					},
				},
				"required": []string{"path", "points"},
			},
		},
		{
			Name:        "floorplan_predict",
			Description: "Ask the segmentation oracle for candidate masks from points and/or boxes, refine and rank them, and return every candidate with the best one marked. Optionally extract the best mask as a region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         pathProperty,
					"points":       pointListProperty,
					"point_labels": pointLabelsProperty,
					"boxes": map[string]interface{}{
						"type":        "array",
						"description": "Boxes as [x1, y1, x2, y2]",
						"items": map[string]interface{}{
							"type":     "array",
							"items":    map[string]interface{}{"type": "integer"},
							"minItems": 4,
							"maxItems": 4,
						},
					},
					"enhance": map[string]interface{}{
						"type":        "boolean",
						"description": "Add boundary guidance points before querying. Default false",
					},
					"include_masks": map[string]interface{}{
						"type":        "boolean",
						"description": "Include full 0/255 mask grids in the answer. Default true",
					},
					"extract": map[string]interface{}{
						"type":        "boolean",
						"description": "Convert the best mask to a region polygon",
					},
					"category": map[string]interface{}{
						"type":        "string",
						"description": "Category to tag the extracted region with",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "floorplan_assign_labels",
			Description: "Bind store names to regions: each label, in order, claims the nearest unclaimed region of a matching category within its search radius. Unmatched labels and unclaimed regions are reported.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": assignProps,
			},
		},
		{
			Name:        "floorplan_extract_stores",
			Description: "Run detection and label assignment and return the full store export document (dimensions, categories, labeled stores, unmatched labels, unclaimed regions, warnings).",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": extractProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "floorplan_overlay",
			Description: "Draw region outlines with legend indices over the plan as base64 PNG for review. Uses extracted stores unless explicit outlines are given.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": overlayProps,
				"required":   []string{"path"},
			},
		},

		// Health
		{
			Name:        "floorplan_status",
			Description: "Report oracle configuration and health, the loaded catalog, and cached floor plans.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
