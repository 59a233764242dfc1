package config

const (
	defaultConfigFile      = "taskpool.toml"
	defaultThreads         = 0
	defaultPollIntervalMs  = 1000
	defaultQueueCapacity   = 0
	defaultOverflow        = "block"
	defaultLogToStdout     = true
	defaultLogToLatestLog  = false
	defaultLogToUniqueFile = false
	defaultLogDir          = "logs"
	defaultLogAsync        = false
	defaultLevelMask       = "all"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Pool: Pool{
			Threads:        defaultThreads,
			PollIntervalMs: defaultPollIntervalMs,
			QueueCapacity:  defaultQueueCapacity,
			Overflow:       defaultOverflow,
		},
		Logging: Logging{
			LogToStdout:     defaultLogToStdout,
			LogToLatestLog:  defaultLogToLatestLog,
			LogToUniqueFile: defaultLogToUniqueFile,
			LogDir:          defaultLogDir,
			Async:           defaultLogAsync,
			QueueCapacity:   defaultQueueCapacity,
			Overflow:        defaultOverflow,
			LevelMask:       defaultLevelMask,
		},
	}
}
