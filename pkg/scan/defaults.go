package scan

// DefaultExtensions returns the stock allow-list of source file extensions.
func DefaultExtensions() []string {
	return []string{
		".py", ".cs", ".js", ".ts", ".html", ".css", ".java", ".cpp", ".c",
		".h", ".hpp", ".cxx", ".cc", ".php", ".rb", ".go", ".rs", ".swift",
		".kt", ".scala", ".sh", ".ps1", ".sql", ".xml", ".json", ".yaml",
		".yml", ".jsx", ".tsx", ".vue", ".scss", ".sass", ".less", ".m",
		".mm", ".r", ".pl", ".lua", ".dart", ".zig", ".nim", ".hx",
	}
}

// DefaultSkipDirs returns the stock denylist of directory names whose
// subtrees are never scanned: VCS metadata, dependency caches, build
// outputs and editor state.
func DefaultSkipDirs() []string {
	return []string{
		".git", ".svn", ".hg", ".vscode", ".idea", ".vs", "node_modules",
		"__pycache__", ".pytest_cache", "venv", "env", ".env", "bin", "obj",
		"target", "build", "dist", "coverage", ".nyc_output", "logs", "tmp",
		".cache", "vendor", "third_party", "external", ".gradle",
	}
}
