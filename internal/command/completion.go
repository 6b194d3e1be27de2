// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/refdiff/refdiff/internal/meta"
)

const bashCompletionScript = `# bash completion for refdiff
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_refdiff()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "run tree store completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--color -c --output -o --query -q --titles -t"

    case "$cmd" in
    run)
      local opts="$common --ref1 --ref2 --repo -r --heatmaps --interactive -i --patch --json-diff --skip-keys"
            ;;
        tree)
      local opts="$common --ref1 --ref2 --repo -r --patch --json-diff --skip-keys"
            ;;
        store)
            local opts="$common"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
        return 0
    fi

  if [[ "$cur" == -* ]]; then
    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
  fi

  # Otherwise complete files/directories for positionals
  COMPREPLY=( $(compgen -o default -- "$cur") )
  return 0
}

complete -F _refdiff refdiff
`

const zshCompletionScript = `#compdef refdiff

_refdiff() {
  local -a cmds
  cmds=(
    'run:full comparison run'
    'tree:structural diff of the two refs'
    'store:compare two store files'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
  '(-q --query)'{-q,--query}'[gjson path to extract]:path'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'refdiff commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    run)
      _arguments -C \
        $common \
        '--ref1[first ref specifier]:ref' \
        '--ref2[second ref specifier]:ref' \
        '(-r --repo)'{-r,--repo}'[repository directory]:dir:_directories' \
        '--heatmaps[render a heatmap per store]' \
        '(-i --interactive)'{-i,--interactive}'[pick stores to inspect]' \
        '--patch[show unified diffs]' \
        '--json-diff[show structural json diffs]' \
        '--skip-keys[keys to ignore in json diffs]:keys' \
        '::RepoDir:_directories'
      ;;
    tree)
      _arguments -C \
        $common \
        '--ref1[first ref specifier]:ref' \
        '--ref2[second ref specifier]:ref' \
        '(-r --repo)'{-r,--repo}'[repository directory]:dir:_directories' \
        '--patch[show unified diffs]' \
        '--json-diff[show structural json diffs]' \
        '--skip-keys[keys to ignore in json diffs]:keys' \
        '::RepoDir:_directories'
      ;;
    store)
      _arguments -C \
        $common \
        '1:left store:_files' \
        '2:right store:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _refdiff refdiff refdiff
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(os.Stdout, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(os.Stdout, bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: refdiff completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "refdiff completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
