package redis

// RedisStreamConfig names the request stream the consumer reads from and the
// results stream it publishes evaluations to.
type RedisStreamConfig struct {
	RedisAddr     string
	RedisPassword string
	Stream        string
	ResultsStream string
	Group         string
	ConsumerName  string
}

func NewRedisStreamConfig(redisAddr string, redisPassword string, stream string, resultsStream string, group string, consumerName string) *RedisStreamConfig {
	return &RedisStreamConfig{
		RedisAddr:     redisAddr,
		RedisPassword: redisPassword,
		Stream:        stream,
		ResultsStream: resultsStream,
		Group:         group,
		ConsumerName:  consumerName,
	}
}
