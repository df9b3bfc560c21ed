package registry

import "fmt"

// RegisterCore installs the built-in actions. The command bodies are the
// local runner's rendition only; the engine treats them as opaque, and a
// different runner agent is free to register its own implementations.
func RegisterCore(r *Registry) {
	r.Register(&Action{
		Name:         "checkout",
		Description:  "Verify the working copy and sync submodules.",
		Precondition: true,
		Render: func(with map[string]string) []string {
			cmds := []string{"git rev-parse --is-inside-work-tree"}
			if with["submodules"] == "recursive" {
				cmds = append(cmds,
					"git submodule sync --recursive",
					"git submodule update --init --recursive",
				)
			} else if with["submodules"] == "true" {
				cmds = append(cmds, "git submodule update --init")
			}
			return cmds
		},
	})

	r.Register(&Action{
		Name:        "setup-toolchain",
		Description: "Probe that the requested toolchain is available.",
		Render: func(with map[string]string) []string {
			name := with["name"]
			if name == "" {
				name = "cc"
			}
			// Installation is the runner image's business; the step only
			// proves the toolchain answers.
			cmds := []string{fmt.Sprintf("command -v %s", name)}
			if version := with["version"]; version != "" {
				cmds = append(cmds, fmt.Sprintf("%s --version # expecting %s", name, version))
			}
			return cmds
		},
	})

	r.Register(&Action{
		Name:        "cache",
		Description: "Restore or save a dependency cache.",
		Render: func(with map[string]string) []string {
			// No cache backend in the local runner; succeed as a no-op so
			// documents stay portable.
			return []string{":"}
		},
	})
}
