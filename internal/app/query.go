package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/samvad-hq/recipe-client/pkg/recipeapi"
)

// Exit codes returned by RunQuery.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ErrUsage marks malformed command lines.
var ErrUsage = errors.New("usage")

// QueryUsage documents the commands understood by RunQuery.
const QueryUsage = `commands:
  all                     list every recipe
  search <query>          search recipes by name
  cuisine <cuisine>       list recipes of a cuisine
  top [limit]             list top rated recipes (default 6)
  get <id>                fetch one recipe
  create <json>           create a recipe
  update <id> <json>      replace a recipe
  delete <id>             delete a recipe`

// RunQuery executes one command and writes indented JSON to stdout. On failure it
// writes the failed-to-load sentinel to stdout and the typed error to stderr.
func RunQuery(ctx context.Context, api *recipeapi.Client, args []string, stdout, stderr io.Writer) int {
	res, err := dispatch(ctx, api, args)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n%s\n", err, QueryUsage)
		return ExitUsage
	}

	if !res.OK() {
		fmt.Fprintln(stdout, recipeapi.FailedToLoad)
		fmt.Fprintf(stderr, "error: %v\n", res.Err())
		return ExitFailure
	}

	var out bytes.Buffer
	if err := json.Indent(&out, res.Raw(), "", "  "); err != nil {
		fmt.Fprintf(stderr, "format response: %v\n", err)
		return ExitFailure
	}
	out.WriteByte('\n')
	if _, err := out.WriteTo(stdout); err != nil {
		fmt.Fprintf(stderr, "write response: %v\n", err)
		return ExitFailure
	}
	return ExitOK
}

func dispatch(ctx context.Context, api *recipeapi.Client, args []string) (recipeapi.Result, error) {
	if len(args) == 0 {
		return recipeapi.Result{}, fmt.Errorf("%w: missing command", ErrUsage)
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "all":
		if err := wantArgs(cmd, rest, 0); err != nil {
			return recipeapi.Result{}, err
		}
		return api.LoadAllRecipes(ctx), nil
	case "search":
		if err := wantArgs(cmd, rest, 1); err != nil {
			return recipeapi.Result{}, err
		}
		return api.SearchRecipes(ctx, rest[0]), nil
	case "cuisine":
		if err := wantArgs(cmd, rest, 1); err != nil {
			return recipeapi.Result{}, err
		}
		return api.GetRecipesByCuisine(ctx, rest[0]), nil
	case "top":
		switch len(rest) {
		case 0:
			return api.GetTopRatedRecipes(ctx), nil
		case 1:
			n, err := strconv.Atoi(rest[0])
			if err != nil {
				return recipeapi.Result{}, fmt.Errorf("%w: top limit %q is not an integer", ErrUsage, rest[0])
			}
			return api.GetTopRatedRecipes(ctx, n), nil
		default:
			return recipeapi.Result{}, fmt.Errorf("%w: top takes at most one argument", ErrUsage)
		}
	case "get":
		if err := wantArgs(cmd, rest, 1); err != nil {
			return recipeapi.Result{}, err
		}
		return api.GetRecipe(ctx, rest[0]), nil
	case "create":
		if err := wantArgs(cmd, rest, 1); err != nil {
			return recipeapi.Result{}, err
		}
		body, err := jsonArg(rest[0])
		if err != nil {
			return recipeapi.Result{}, err
		}
		return api.CreateRecipe(ctx, body), nil
	case "update":
		if err := wantArgs(cmd, rest, 2); err != nil {
			return recipeapi.Result{}, err
		}
		body, err := jsonArg(rest[1])
		if err != nil {
			return recipeapi.Result{}, err
		}
		return api.UpdateRecipe(ctx, rest[0], body), nil
	case "delete":
		if err := wantArgs(cmd, rest, 1); err != nil {
			return recipeapi.Result{}, err
		}
		return api.DeleteRecipe(ctx, rest[0]), nil
	default:
		return recipeapi.Result{}, fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func wantArgs(cmd string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrUsage, cmd, n, len(args))
	}
	return nil
}

func jsonArg(raw string) (json.RawMessage, error) {
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrUsage)
	}
	return json.RawMessage(raw), nil
}
