// Package coach embeds the coach tutoring engine in a Go program.
//
// The client loads knowledge base fragments from parquet files or a
// Redis/Valkey search index, groups them with the configured language model,
// caches the grouping in the store and renders the assembled context that
// lessons, mentor answers and assessments are grounded in.
//
//	client, _ := coach.New(ctx,
//	    coach.WithRedis("localhost:6379", ""),
//	    coach.WithFragmentDir("indexes"),
//	    coach.WithGenerator(myModel),
//	)
//	defer client.Close()
//
//	c, _ := client.Context(ctx, "mml", coach.LevelAdvanced, "")
//	lesson, _ := client.Lesson(ctx, "mml", coach.LevelBeginner, "alarms")
//
// Without a generator grouping falls back to type buckets and every
// generating call fails with ErrGenerationFailed.
package coach
