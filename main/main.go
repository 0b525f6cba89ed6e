package main

import (
	"fmt"
	"os"

	"github.com/ryogrid/SamehadaCascades/planner/expression"
	"github.com/ryogrid/SamehadaCascades/planner/optimizer"
	"github.com/ryogrid/SamehadaCascades/planner/rules"
)

// the optimizer can be used as a library only.
// so, this entry point is used for running a sample query for debugging now...
func main() {
	query := expression.NewFilter("t1.a = 10",
		expression.NewJoin(
			expression.NewJoin(expression.NewScan(1), expression.NewIndexedScan(2, "t2.b = t1.b", 0)),
			expression.NewScan(3)))
	fmt.Println("query:", query)

	s := optimizer.NewSearchEngine(rules.DefaultRegistry(), optimizer.DefaultCostModel(), optimizer.DefaultConfig())
	plan, err := s.Optimize(query)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Print(plan)
	if err := s.Memo().Format(os.Stdout); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
