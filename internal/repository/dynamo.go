package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/user/bluckboster/internal/model"
	"go.uber.org/zap"
)

// DynamoBatchSize BatchWriteItem 单次最多 25 条
const DynamoBatchSize = 25

// DynamoDBAPI 用到的 DynamoDB 接口，便于测试替换
type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)

	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)

	GetItem(ctx context.Context, params *dynamodb.GetItemInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoConfig 连接配置，静态密钥与 Endpoint 均可选
type DynamoConfig struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewDynamoClient 通过默认凭证链创建客户端
func NewDynamoClient(ctx context.Context, cfg DynamoConfig) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// DynamoStore DynamoDB 记录存储
type DynamoStore struct {
	client     DynamoDBAPI
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func NewDynamoStore(client DynamoDBAPI, logger *zap.Logger) *DynamoStore {
	return &DynamoStore{
		client:     client,
		maxRetries: 5,
		backoff:    200 * time.Millisecond,
		logger:     logger.Named("dynamo"),
	}
}

// PutItems 按 25 条分批写入，未处理的条目退避后重发；
// 同一主键只写最后一条，BatchWriteItem 不接受重复主键
func (s *DynamoStore) PutItems(ctx context.Context, table model.Table, items []map[string]any) (int, error) {
	items, err := lastByKey(table, items)
	if err != nil {
		return 0, err
	}

	written := 0
	for start := 0; start < len(items); start += DynamoBatchSize {
		end := min(start+DynamoBatchSize, len(items))

		requests := make([]types.WriteRequest, 0, end-start)
		for i, item := range items[start:end] {
			av, err := marshalItem(item)
			if err != nil {
				return written, fmt.Errorf("第 %d 条记录序列化失败: %w", start+i, err)
			}
			requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
		}

		if err := s.batchWrite(ctx, table.Name, requests); err != nil {
			return written, err
		}
		written += end - start
		s.logger.Debug("批量写入完成",
			zap.String("table", table.Name),
			zap.Int("written", written),
			zap.Int("total", len(items)))
	}
	return written, nil
}

func (s *DynamoStore) batchWrite(ctx context.Context, tableName string, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{tableName: requests}
	for attempt := 0; ; attempt++ {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("BatchWriteItem %s 失败: %w", tableName, err)
		}
		left := out.UnprocessedItems[tableName]
		if len(left) == 0 {
			return nil
		}
		if attempt >= s.maxRetries {
			return fmt.Errorf("BatchWriteItem %s: 重试 %d 次后仍有 %d 条未处理", tableName, s.maxRetries, len(left))
		}

		s.logger.Warn("存在未处理条目，稍后重发",
			zap.String("table", tableName),
			zap.Int("unprocessed", len(left)),
			zap.Int("attempt", attempt+1))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.backoff << attempt):
		}
		pending = map[string][]types.WriteRequest{tableName: left}
	}
}

// UpdateFields 生成 "SET a = :a, b = :b" 形式的更新表达式，字段按名称排序
func (s *DynamoStore) UpdateFields(ctx context.Context, table model.Table, id string, fields map[string]any) error {
	if id == "" {
		return ErrMissingKey
	}
	if len(fields) == 0 {
		return nil
	}

	expr, names, values, err := buildUpdateExpr(fields)
	if err != nil {
		return err
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table.Name),
		Key:                       map[string]types.AttributeValue{table.Key: &types.AttributeValueMemberS{Value: id}},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueNone,
	})
	if err != nil {
		return fmt.Errorf("更新 %s/%s 失败: %w", table.Name, id, err)
	}
	return nil
}

func buildUpdateExpr(fields map[string]any) (string, map[string]string, map[string]types.AttributeValue, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make(map[string]string, len(keys))
	values := make(map[string]types.AttributeValue, len(keys))
	sets := make([]string, 0, len(keys))
	for _, k := range keys {
		av, err := marshalValue(fields[k])
		if err != nil {
			return "", nil, nil, fmt.Errorf("字段 %s 序列化失败: %w", k, err)
		}
		names["#"+k] = k
		values[":"+k] = av
		sets = append(sets, fmt.Sprintf("#%s = :%s", k, k))
	}
	return "SET " + strings.Join(sets, ", "), names, values, nil
}

func (s *DynamoStore) GetItem(ctx context.Context, table model.Table, id string) (map[string]any, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table.Name),
		Key:            map[string]types.AttributeValue{table.Key: &types.AttributeValueMemberS{Value: id}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("读取 %s/%s 失败: %w", table.Name, id, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item map[string]any
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("解析 %s/%s 失败: %w", table.Name, id, err)
	}
	return item, nil
}

func marshalItem(item map[string]any) (map[string]types.AttributeValue, error) {
	av := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		val, err := marshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		av[k] = val
	}
	return av, nil
}

// marshalValue 精确小数直接写为 N 类型，其余交给 attributevalue
func marshalValue(v any) (types.AttributeValue, error) {
	if d, ok := v.(decimal.Decimal); ok {
		return &types.AttributeValueMemberN{Value: d.String()}, nil
	}
	return attributevalue.Marshal(v)
}
