package system

import "path/filepath"

func realpath(native string) (string, error) {
	resolved, err := filepath.EvalSymlinks(native)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}
