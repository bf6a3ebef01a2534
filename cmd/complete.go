package cmd

import (
	"context"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/etnz/tradebook/config"
	"github.com/etnz/tradebook/docs"
)

// Completion describes the tbk command line for shell completion.
func Completion() *complete.Command {
	symbols := complete.PredictFunc(predictSymbols)
	topics, _ := docs.GetAllTopics()

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"data":  predict.Dirs("*"),
			"store": predict.Set{config.StoreJSONL, config.StoreSQLite},
			"v":     predict.Nothing,
			"plain": predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"validate": {Args: predict.Files("*.json")},
			"ingest": {
				Flags: map[string]complete.Predictor{"strict": predict.Nothing},
				Args:  predict.Files("*.json"),
			},
			"portfolio": {Flags: map[string]complete.Predictor{"save": predict.Nothing}},
			"annual":    {Flags: map[string]complete.Predictor{"s": symbols}},
			"history":   {Args: symbols},
			"dividends": {Args: symbols},
			"intake":    {Args: symbols},
			"earnings": {
				Flags: map[string]complete.Predictor{"s": symbols, "path": predict.Something},
				Args:  predict.Files("*.json"),
			},
			"serve": {Flags: map[string]complete.Predictor{"dev": predict.Nothing}},
			"topic": {
				Flags: map[string]complete.Predictor{"l": predict.Nothing},
				Args:  predict.Set(topics),
			},
		},
	}
}

// predictSymbols lists the symbols of the ledger, silently.
func predictSymbols(prefix string) []string {
	a, err := newApp()
	if err != nil {
		return nil
	}
	ctx := context.Background()
	book, closeBook, err := a.openBook(ctx)
	if err != nil {
		return nil
	}
	defer closeBook()
	symbols, _ := book.Symbols(ctx)
	return symbols
}
