package domain

// Plan is the declarative build plan handed to the external bundler.
type Plan struct {
	Mode         BuildMode         `json:"mode"`
	Entry        *EntryMap         `json:"entry"`
	Output       Output            `json:"output"`
	Devtool      any               `json:"devtool"`
	Resolve      Resolve           `json:"resolve"`
	Module       ModuleConfig      `json:"module"`
	Externals    map[string]string `json:"externals"`
	Optimization Optimization      `json:"optimization"`
	Stats        StatsReporting    `json:"stats"`
	Fingerprint  string            `json:"fingerprint,omitempty"`

	// Rules keeps the structured cache-group rules the plan was derived from.
	Rules []CacheGroupRule `json:"-"`
}

// Output describes where and how bundles are written.
type Output struct {
	Path          string  `json:"path"`
	Filename      string  `json:"filename"`
	ChunkFilename string  `json:"chunkFilename"`
	Library       Library `json:"library"`
}

// Library is the global export of every bundle.
type Library struct {
	Name []string `json:"name"`
	Type string   `json:"type"`
}

// Resolve lists module extensions the bundler resolves.
type Resolve struct {
	Extensions []string `json:"extensions"`
}

// ModuleConfig references the external transpilation step. Its rules are opaque.
type ModuleConfig struct {
	Rules []map[string]any `json:"rules"`
}

// Optimization carries the chunk splitting configuration.
type Optimization struct {
	SplitChunks SplitChunks `json:"splitChunks"`
}

// SplitChunks holds the cache groups keyed by name.
type SplitChunks struct {
	Name        bool                  `json:"name"`
	CacheGroups map[string]CacheGroup `json:"cacheGroups"`
}

// CacheGroup is the bundler-facing form of a CacheGroupRule.
type CacheGroup struct {
	Name     string `json:"name"`
	Test     string `json:"test"`
	Chunks   string `json:"chunks"`
	Priority int    `json:"priority"`
	Enforce  bool   `json:"enforce"`
}

// NewCacheGroup translates a rule into its bundler form.
func NewCacheGroup(rule CacheGroupRule) CacheGroup {
	chunks := "async"
	if rule.AllChunks {
		chunks = "all"
	}
	return CacheGroup{
		Name:     rule.Name,
		Test:     rule.Compile().Pattern(),
		Chunks:   chunks,
		Priority: rule.Priority,
		Enforce:  true,
	}
}

// StatsReporting configures the stats file used for dependency tracking downstream.
type StatsReporting struct {
	Filename string       `json:"filename"`
	Options  StatsOptions `json:"options"`
}

// StatsOptions is the fixed verbosity shape of the stats file.
type StatsOptions struct {
	Entrypoints      bool `json:"entrypoints"`
	Errors           bool `json:"errors"`
	Warnings         bool `json:"warnings"`
	Assets           bool `json:"assets"`
	BuiltAt          bool `json:"builtAt"`
	Cached           bool `json:"cached"`
	CachedAssets     bool `json:"cachedAssets"`
	Children         bool `json:"children"`
	Chunks           bool `json:"chunks"`
	ChunkGroups      bool `json:"chunkGroups"`
	ChunkModules     bool `json:"chunkModules"`
	ChunkOrigins     bool `json:"chunkOrigins"`
	Depth            bool `json:"depth"`
	Env              bool `json:"env"`
	ErrorDetails     bool `json:"errorDetails"`
	Hash             bool `json:"hash"`
	Modules          bool `json:"modules"`
	ModuleTrace      bool `json:"moduleTrace"`
	Performance      bool `json:"performance"`
	ProvidedExports  bool `json:"providedExports"`
	PublicPath       bool `json:"publicPath"`
	Reasons          bool `json:"reasons"`
	Source           bool `json:"source"`
	Timings          bool `json:"timings"`
	UsedExports      bool `json:"usedExports"`
	Version          bool `json:"version"`
}

// NewStatsReporting returns the minimal stats contract: entrypoints, errors and
// warnings only.
func NewStatsReporting(filename string) StatsReporting {
	return StatsReporting{
		Filename: filename,
		Options: StatsOptions{
			Entrypoints: true,
			Errors:      true,
			Warnings:    true,
		},
	}
}

// DefaultModuleRules returns the transpilation rules used when none are configured.
func DefaultModuleRules(mode BuildMode) []map[string]any {
	return []map[string]any{
		{
			"test":    `\.((jsx?)|(es6))$`,
			"exclude": `[\\/]node_modules[\\/]`,
			"loader":  "babel-loader",
			"options": map[string]any{
				"compact": !mode.IsDevelopment(),
				"presets": []string{"react"},
			},
		},
		{
			"test": `\.less$`,
			"use":  []string{"style-loader", "css-loader", "less-loader"},
		},
	}
}
