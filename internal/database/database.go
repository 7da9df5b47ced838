package database

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"livechat-backend/internal/env"
)

type Database struct {
	Client *dynamodb.Client
}

func NewDatabase() (*Database, error) {
	region := env.GetOrDefault(env.AWSRegion, "eu-central-1")

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if id := env.Get(env.AWSID); id != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(id, env.Get(env.AWSSecret), env.Get(env.AWSToken)),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if endpoint := env.Get(env.DynamoDBEndpoint); endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return &Database{
		Client: dynamodb.NewFromConfig(cfg, clientOpts...),
	}, nil
}
