package broker

import "fmt"

// Config holds RabbitMQ connection parameters, sourced from
// RABBITMQ_{HOST,PORT,USERNAME,PASSWORD} per spec.md §6.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// DefaultConfig matches spec.md's documented defaults.
func DefaultConfig() Config {
	return Config{
		Host:     "localhost",
		Port:     5672,
		Username: "guest",
		Password: "guest",
	}
}

// URI builds the amqp:// connection string amqp091-go's Dial expects.
func (c Config) URI() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.Username, c.Password, c.Host, c.Port)
}
