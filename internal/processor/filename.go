package processor

import "github.com/synctree/synctree/internal/value"

// filenameFor derives the on-disk base name a freshly-added instance should
// be written to, mirroring the suffix each sync rule strips on the forward
// pass (internal/syncrule Defaults) so the written file is picked up as the
// same class on the next directory rescan. Folder has no suffix: it becomes
// a directory instead of a leaf file (see applyAddition).
func filenameFor(name, class string, props map[string]value.Value, legacy bool) string {
	ext := ".luau"
	if legacy {
		ext = ".lua"
	}

	switch class {
	case "Script":
		if rc, ok := props["RunContext"]; ok && rc.Kind == value.KindEnum && rc.Enum.EnumName == "RunContext" && rc.Enum.Value == 2 {
			return name + ".client" + ext
		}
		return name + ".server" + ext
	case "LocalScript":
		return name + ".client" + ext
	case "ModuleScript":
		return name + ext
	case "StringValue":
		return name + ".txt"
	case "LocalizationTable":
		return name + ".csv"
	default:
		return name + ".data.json"
	}
}
