package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
)

// CompletionCmd generates shell completions
type CompletionCmd struct {
	Shell string `arg:"" enum:"bash,zsh,fish" help:"Shell type (bash, zsh, fish)"`
}

// Run executes the completion command.
//
// Note: we accept *kong.Context so completion output stays in sync with the actual CLI model.
func (c *CompletionCmd) Run(globals *Globals, ctx *kong.Context) error {
	var model *kong.Node
	if ctx != nil && ctx.Kong != nil && ctx.Model != nil {
		model = ctx.Model.Node
	}
	commands, flags := completionModel(model)

	switch c.Shell {
	case "bash":
		return c.generateBash(globals, commands, flags)
	case "zsh":
		return c.generateZsh(globals, commands, flags)
	case "fish":
		return c.generateFish(globals, commands, flags)
	default:
		return fmt.Errorf("unsupported shell: %s", c.Shell)
	}
}

// completionModel flattens the kong model into top-level command names and
// global flag tokens.
func completionModel(model *kong.Node) (commands []string, flags []string) {
	if model == nil {
		return nil, nil
	}
	for _, child := range model.Children {
		if child == nil || child.Type != kong.CommandNode || child.Hidden {
			continue
		}
		commands = append(commands, child.Name)
	}
	seen := map[string]struct{}{}
	for _, group := range model.AllFlags(true) {
		for _, f := range group {
			if f == nil {
				continue
			}
			token := "--" + f.Name
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			flags = append(flags, token)
		}
	}
	sort.Strings(commands)
	sort.Strings(flags)
	return commands, flags
}

func (c *CompletionCmd) generateBash(globals *Globals, commands, flags []string) error {
	script := `# ccw bash completion script
# Add to ~/.bashrc or ~/.bash_profile:
#   eval "$(ccw completion bash)"

_ccw_complete_sessions() {
    local ids
    ids=$(ccw list --format ndjson 2>/dev/null | grep -o '"id":"[^"]*"' | cut -d'"' -f4 | tr '\n' ' ')
    COMPREPLY=($(compgen -W "${ids}" -- "${cur}"))
}

_ccw_completions() {
    local cur prev words cword
    _init_completion || return

    case "${prev}" in
        kill|-r|--resume)
            _ccw_complete_sessions
            return
            ;;
        --format)
            COMPREPLY=($(compgen -W "text ndjson" -- "${cur}"))
            return
            ;;
        -m|--mode)
            COMPREPLY=($(compgen -W "external embedded" -- "${cur}"))
            return
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=($(compgen -W "` + strings.Join(flags, " ") + `" -- "${cur}"))
        return
    fi

    if [[ ${cword} -eq 1 ]]; then
        COMPREPLY=($(compgen -W "` + strings.Join(commands, " ") + `" -- "${cur}"))
    fi
}

complete -F _ccw_completions ccw
`
	_, err := fmt.Fprint(globals.Stdout, script)
	return err
}

func (c *CompletionCmd) generateZsh(globals *Globals, commands, flags []string) error {
	// Keep this intentionally lightweight (no deep zsh _arguments trees).
	// It is generated from the Kong model to avoid command/flag drift.
	script := `#compdef ccw
# ccw zsh completion script
# Add to ~/.zshrc:
#   eval "$(ccw completion zsh)"

_ccw_complete_sessions() {
  local -a ids
  ids=(${(f)"$(ccw list --format ndjson 2>/dev/null | grep -o '\"id\":\"[^\"]*\"' | cut -d'\"' -f4)"})
  _describe 'session' ids
}

_ccw() {
  local cur prev
  cur="${words[CURRENT]}"
  prev="${words[CURRENT-1]}"

  case "${prev}" in
    kill|-r|--resume)
      _ccw_complete_sessions
      return
      ;;
    --format)
      _values 'format' text ndjson
      return
      ;;
    -m|--mode)
      _values 'mode' external embedded
      return
      ;;
  esac

  if [[ "${cur}" == -* ]]; then
    compadd -- ` + strings.Join(flags, " ") + `
    return
  fi

  if (( CURRENT == 2 )); then
    compadd -- ` + strings.Join(commands, " ") + `
  fi
}

compdef _ccw ccw
`
	_, err := fmt.Fprint(globals.Stdout, script)
	return err
}

func (c *CompletionCmd) generateFish(globals *Globals, commands, flags []string) error {
	var sb strings.Builder
	sb.WriteString(`# ccw fish completion script
# Add to ~/.config/fish/completions/ccw.fish

# Disable file completion by default
complete -c ccw -f

`)

	for _, cmd := range commands {
		sb.WriteString("complete -c ccw -n \"__fish_use_subcommand\" -a \"")
		sb.WriteString(cmd)
		sb.WriteString("\"\n")
	}

	for _, flag := range flags {
		sb.WriteString("complete -c ccw -l ")
		sb.WriteString(strings.TrimPrefix(flag, "--"))
		sb.WriteString("\n")
	}

	sb.WriteString(`
# Session id completion for kill and --resume
complete -c ccw -n "__fish_seen_subcommand_from kill" -a "(ccw list --format ndjson 2>/dev/null | string match -r '\"id\":\"[^\"]*\"' | string replace -r '\"id\":\"([^\"]*)\"' '$1')"
`)

	_, err := fmt.Fprint(globals.Stdout, sb.String())
	return err
}
