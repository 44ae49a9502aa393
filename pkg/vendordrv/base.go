package vendordrv

import "github.com/vantage-net/vantage/pkg/parser"

func init() {
	register(func() Driver { return &BaseDriver{vendor: "base"} }, "base")
}

// BaseDriver is the fallback strategy for an unrecognized vendor tag: no
// pagination command (triggers the transport's shotgun list), default
// output shaping, and the shared post-processing helpers only — no
// vendor-specific field mapping.
type BaseDriver struct {
	vendor string
}

func (b *BaseDriver) Vendor() string { return b.vendor }

func (b *BaseDriver) PaginationCommand() string { return "" }

func (b *BaseDriver) ShapeOutput(collection string, rows []parser.Row, meta parser.Meta) map[string]any {
	return defaultShapeOutput(collection, rows, meta)
}

func (b *BaseDriver) PostProcess(collection string, data map[string]any, store StateReader) map[string]any {
	switch collection {
	case "memory":
		return ComputeMemoryPct(data)
	case "log":
		return PostProcessLog(data)
	case "bgp_summary":
		return normalizeBGPIn(data)
	default:
		return data
	}
}

func normalizeBGPIn(data map[string]any) map[string]any {
	if peers, ok := data["peers"].([]map[string]any); ok {
		data["peers"] = NormalizeBGPPeers(peers)
	}
	return data
}
