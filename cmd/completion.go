package cmd

import (
	"flag"

	"github.com/etnz/kasir/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors complete the values of flags by name.
var flagPredictors = map[string]complete.Predictor{
	"period": predict.Set{"daily", "weekly", "monthly", "yearly"},
	"o":      predict.Files("*.csv"),
	"config": predict.Files("*.yaml"),
}

// Completion returns the shell completion of the application named name,
// including the global flags of top.
func Completion(top *flag.FlagSet) *complete.Command {
	c := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: predictors(top),
	}
	for _, name := range []string{"help", "flags", "commands"} {
		c.Sub[name] = &complete.Command{}
	}
	for _, e := range commands {
		fs := flag.NewFlagSet(e.cmd.Name(), flag.ContinueOnError)
		e.cmd.SetFlags(fs)
		c.Sub[e.cmd.Name()] = &complete.Command{Flags: predictors(fs)}
	}
	if topics, err := docs.Topics(); err == nil {
		c.Sub["topic"].Args = predict.Set(topics)
	}
	return c
}

func predictors(fs *flag.FlagSet) map[string]complete.Predictor {
	res := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		switch p, ok := flagPredictors[f.Name]; {
		case ok:
			res[f.Name] = p
		case isBool(f):
			res[f.Name] = predict.Nothing
		default:
			res[f.Name] = predict.Something
		}
	})
	return res
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
