package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/quarrylabs/quarry/internal/eventbus"
	"github.com/quarrylabs/quarry/internal/executor"
	"github.com/quarrylabs/quarry/internal/introspection"
	"github.com/quarrylabs/quarry/internal/jsondata"
	"github.com/quarrylabs/quarry/internal/language"
	"github.com/quarrylabs/quarry/internal/otel"
	"github.com/quarrylabs/quarry/internal/reqid"
	"github.com/quarrylabs/quarry/internal/schema"
)

const rootUsage = `quarry — GraphQL execution engine & tools

USAGE:
  quarry <command> [flags]

COMMANDS:
  exec             Execute a GraphQL operation against a JSON data document
  introspect       Print the full introspection result for a schema
  help             Show help for any command
`

const execUsage = `exec FLAGS:
  -schema <file>      GraphQL SDL schema file (required)
  -query <file>       GraphQL query document file (required)
  -operation <name>   Operation to execute (default: the only one)
  -variables <json>   Request variables as a JSON object
  -data <file>        JSON data document backing the resolvers (default: {})
  -pretty             Pretty-print the JSON response
  -otel.endpoint <addr>  OTLP collector endpoint
  -otel.service <name>   OpenTelemetry service name (default: quarry)
`

const introspectUsage = `introspect FLAGS:
  -schema <file>  GraphQL SDL schema file (required)
  -pretty         Pretty-print the JSON response
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := args[0]
	cmdArgs := args[1:]
	switch cmd {
	case "exec":
		return cmdExec(cmdArgs)
	case "introspect":
		return cmdIntrospect(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "exec":
		fmt.Print(execUsage)
	case "introspect":
		fmt.Print(introspectUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdExec(args []string) error {
	schemaPath := ""
	queryPath := ""
	operationName := ""
	variablesJSON := ""
	dataPath := ""
	pretty := false
	otelEndpoint := ""
	otelService := "quarry"

	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaPath, "schema", schemaPath, "GraphQL SDL schema file")
	fs.StringVar(&queryPath, "query", queryPath, "GraphQL query document file")
	fs.StringVar(&operationName, "operation", operationName, "Operation to execute")
	fs.StringVar(&variablesJSON, "variables", variablesJSON, "Request variables as a JSON object")
	fs.StringVar(&dataPath, "data", dataPath, "JSON data document backing the resolvers")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print the JSON response")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, execUsage)
		return err
	}
	if schemaPath == "" || queryPath == "" {
		fmt.Fprint(os.Stderr, execUsage)
		return fmt.Errorf("-schema and -query are required")
	}

	var variables map[string]any
	if variablesJSON != "" {
		if err := json.Unmarshal([]byte(variablesJSON), &variables); err != nil {
			return fmt.Errorf("parse variables: %w", err)
		}
	}
	data := []byte("{}")
	if dataPath != "" {
		var err error
		data, err = os.ReadFile(dataPath)
		if err != nil {
			return fmt.Errorf("read data: %w", err)
		}
	}

	astSchema, sch, err := loadSchema(schemaPath)
	if err != nil {
		return err
	}
	querySource, err := os.ReadFile(queryPath)
	if err != nil {
		return fmt.Errorf("read query: %w", err)
	}
	doc, err := language.LoadQuery(astSchema, string(querySource))
	if err != nil {
		return fmt.Errorf("load query: %w", err)
	}
	operation := doc.Operations.ForName(operationName)
	if operation == nil && operationName == "" && len(doc.Operations) == 1 {
		operation = doc.Operations[0]
	}
	if operation == nil {
		return fmt.Errorf("operation %q not found", operationName)
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()
	ctx, _ := reqid.NewContext(context.Background())

	dataRoot, err := jsondata.NewRoot(sch, sch.QueryType, data)
	if err != nil {
		return err
	}
	if operation.Operation == language.Mutation && sch.MutationType != "" {
		dataRoot, err = jsondata.NewRoot(sch, sch.MutationType, data)
		if err != nil {
			return err
		}
	}

	resp, err := execute(ctx, sch, doc, operation, operationName, variables, dataRoot)
	if err != nil {
		return err
	}
	return printJSON(resp, pretty)
}

// execute splits the operation into its introspection and application halves,
// runs each against its own root, and merges the responses.
func execute(
	ctx context.Context,
	sch *schema.Schema,
	doc *language.QueryDocument,
	operation *language.OperationDefinition,
	operationName string,
	variables map[string]any,
	dataRoot executor.Resolver,
) (*executor.Response, error) {
	split, err := introspection.Split(doc, operation)
	if err != nil {
		return nil, err
	}

	exec := executor.NewExecutor(introspection.Extend(sch))
	switch split.Kind {
	case introspection.SplitOnly:
		return exec.ExecuteRequest(ctx, split.Introspection, operationName, variables, introspection.Root(sch)), nil
	case introspection.SplitBoth:
		resp := exec.ExecuteRequest(ctx, split.Application, operationName, variables, dataRoot)
		resp.Merge(exec.ExecuteRequest(ctx, split.Introspection, operationName, variables, introspection.Root(sch)))
		return resp, nil
	default:
		return exec.ExecuteRequest(ctx, split.Application, operationName, variables, dataRoot), nil
	}
}

func cmdIntrospect(args []string) error {
	schemaPath := ""
	pretty := false

	fs := flag.NewFlagSet("introspect", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaPath, "schema", schemaPath, "GraphQL SDL schema file")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print the JSON response")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, introspectUsage)
		return err
	}
	if schemaPath == "" {
		fmt.Fprint(os.Stderr, introspectUsage)
		return fmt.Errorf("-schema is required")
	}

	_, sch, err := loadSchema(schemaPath)
	if err != nil {
		return err
	}
	doc, err := language.ParseQuery(introspectionQuery)
	if err != nil {
		return fmt.Errorf("parse introspection query: %w", err)
	}

	exec := executor.NewExecutor(introspection.Extend(sch))
	resp := exec.ExecuteRequest(context.Background(), doc, "", nil, introspection.Root(sch))
	return printJSON(resp, pretty)
}

func loadSchema(path string) (*language.Schema, *schema.Schema, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read schema: %w", err)
	}
	astSchema, err := language.LoadSchema(path, string(source))
	if err != nil {
		return nil, nil, fmt.Errorf("load schema: %w", err)
	}
	sch, err := schema.BuildFromAST(astSchema)
	if err != nil {
		return nil, nil, fmt.Errorf("build schema: %w", err)
	}
	return astSchema, sch, nil
}

func printJSON(resp *executor.Response, pretty bool) error {
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(resp, "", "  ")
	} else {
		out, err = json.Marshal(resp)
	}
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// introspectionQuery is the standard full-schema query clients send.
const introspectionQuery = `
query IntrospectionQuery {
  __schema {
    description
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types { ...FullType }
    directives {
      name
      description
      isRepeatable
      locations
      args { ...InputValue }
    }
  }
}

fragment FullType on __Type {
  kind
  name
  description
  specifiedByURL
  isOneOf
  fields(includeDeprecated: true) {
    name
    description
    args(includeDeprecated: true) { ...InputValue }
    type { ...TypeRef }
    isDeprecated
    deprecationReason
  }
  inputFields(includeDeprecated: true) { ...InputValue }
  interfaces { ...TypeRef }
  enumValues(includeDeprecated: true) {
    name
    description
    isDeprecated
    deprecationReason
  }
  possibleTypes { ...TypeRef }
}

fragment InputValue on __InputValue {
  name
  description
  type { ...TypeRef }
  defaultValue
  isDeprecated
  deprecationReason
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
        }
      }
    }
  }
}
`
