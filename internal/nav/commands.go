package nav

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/makegraph/internal/fileutil"
)

func RunDependencies(cmd *cobra.Command, args []string) error {
	rootPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	lookup, err := LoadLookup(rootPath)
	if err != nil {
		return err
	}
	node, err := ResolveProject(lookup, args[0])
	if err != nil {
		return err
	}

	deps := CollectDependencies(lookup, node)
	if asJSON {
		return fileutil.PrintJSON(os.Stdout, map[string]any{
			"query":        args[0],
			"project":      RecordFromNode(node),
			"dependencies": deps,
		})
	}

	fmt.Printf("dependencies of %s (%d)\n", node.Name, len(deps))
	if len(deps) == 0 {
		fmt.Println("no dependencies found")
		return nil
	}
	for _, dep := range deps {
		fmt.Printf("- %s [%s]", dep.Project.Name, dep.Project.Root)
		if dep.Evidence != "" {
			fmt.Printf(" (%s)", dep.Evidence)
		}
		fmt.Println()
	}
	return nil
}

func RunDependents(cmd *cobra.Command, args []string) error {
	rootPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	transitive, err := OptionalBoolFlag(cmd, "transitive", false)
	if err != nil {
		return err
	}

	lookup, err := LoadLookup(rootPath)
	if err != nil {
		return err
	}
	node, err := ResolveProject(lookup, args[0])
	if err != nil {
		return err
	}

	if transitive {
		all := TransitiveDependents(lookup, node)
		if asJSON {
			return fileutil.PrintJSON(os.Stdout, map[string]any{
				"query":      args[0],
				"project":    RecordFromNode(node),
				"transitive": true,
				"dependents": all,
			})
		}
		fmt.Printf("transitive dependents of %s (%d)\n", node.Name, len(all))
		for _, record := range all {
			fmt.Printf("- %s [%s]\n", record.Name, record.Root)
		}
		return nil
	}

	dependents := CollectDependents(lookup, node)
	if asJSON {
		return fileutil.PrintJSON(os.Stdout, map[string]any{
			"query":      args[0],
			"project":    RecordFromNode(node),
			"dependents": dependents,
		})
	}

	fmt.Printf("dependents of %s (%d)\n", node.Name, len(dependents))
	if len(dependents) == 0 {
		fmt.Println("no dependents found")
		return nil
	}
	for _, dependent := range dependents {
		fmt.Printf("- %s [%s]", dependent.Project.Name, dependent.Project.Root)
		if dependent.Evidence != "" {
			fmt.Printf(" (%s)", dependent.Evidence)
		}
		fmt.Println()
	}
	return nil
}

func RunTrace(cmd *cobra.Command, args []string) error {
	rootPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	depth, err := OptionalIntFlag(cmd, "depth", 2)
	if err != nil {
		return err
	}
	if depth < 1 {
		return fmt.Errorf("--depth must be >= 1")
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	lookup, err := LoadLookup(rootPath)
	if err != nil {
		return err
	}
	startNode, err := ResolveProject(lookup, args[0])
	if err != nil {
		return err
	}

	hops := Trace(lookup, startNode, depth)
	if asJSON {
		return fileutil.PrintJSON(os.Stdout, map[string]any{
			"query": args[0],
			"start": RecordFromNode(startNode),
			"depth": depth,
			"hops":  hops,
		})
	}

	fmt.Printf("trace from %s depth=%d hops=%d\n", startNode.Name, depth, len(hops))
	if len(hops) == 0 {
		fmt.Println("no outgoing hops found")
		return nil
	}
	for _, hop := range hops {
		fmt.Printf("- d=%d %s -> %s", hop.Depth, hop.From.Name, hop.To.Name)
		if hop.Evidence != "" {
			fmt.Printf(" (%s)", hop.Evidence)
		}
		fmt.Println()
	}
	return nil
}

func RunPath(cmd *cobra.Command, args []string) error {
	rootPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	lookup, err := LoadLookup(rootPath)
	if err != nil {
		return err
	}
	fromNode, err := ResolveProject(lookup, args[0])
	if err != nil {
		return err
	}
	toNode, err := ResolveProject(lookup, args[1])
	if err != nil {
		return err
	}

	names := ShortestPath(lookup, fromNode.Name, toNode.Name)
	if len(names) == 0 {
		return fmt.Errorf("no path found between %s and %s", fromNode.Name, toNode.Name)
	}

	pathNodes := make([]ProjectRecord, 0, len(names))
	edges := make([]map[string]string, 0, len(names)-1)
	for i, name := range names {
		node := lookup.ByName[name]
		if node == nil {
			continue
		}
		pathNodes = append(pathNodes, RecordFromNode(node))
		if i == 0 {
			continue
		}
		prev := names[i-1]
		edges = append(edges, map[string]string{
			"from":     prev,
			"to":       name,
			"evidence": lookup.EvidenceFor(prev, name),
		})
	}

	if asJSON {
		return fileutil.PrintJSON(os.Stdout, map[string]any{
			"from":   RecordFromNode(fromNode),
			"to":     RecordFromNode(toNode),
			"length": len(pathNodes) - 1,
			"path":   pathNodes,
			"edges":  edges,
		})
	}

	fmt.Printf("path %s -> %s length=%d\n", fromNode.Name, toNode.Name, len(pathNodes)-1)
	for i, node := range pathNodes {
		fmt.Printf("%d. %s [%s]", i+1, node.Name, node.Root)
		if i > 0 {
			fmt.Printf(" (%s)", edges[i-1]["evidence"])
		}
		fmt.Println()
	}
	return nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string, defaultValue bool) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalIntFlag(cmd *cobra.Command, name string, defaultValue int) (int, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return defaultValue, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}
