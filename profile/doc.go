// Package profile captures runtime profiles for a single command invocation.
//
// CPU profiling and execution tracing run between [Config.Start] and
// [Session.Stop]. Heap and goroutine profiles are snapshots taken at Stop.
// Every output is opt-in through a flag:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	sess, err := cfg.Start()
//	// run the command
//	err = sess.Stop()
package profile
