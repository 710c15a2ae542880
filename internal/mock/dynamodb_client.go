// Package mock provides in-memory stand-ins for the AWS clients in internal/awsclient.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mirror-ball/mirrorball/internal/awsclient"
)

var _ awsclient.DynamoDBClient = (*DynamoDBClient)(nil)

type table struct {
	keyAttr string
	order   []string
	items   map[string]map[string]types.AttributeValue
}

// DynamoDBClient is a mock implementation of awsclient.DynamoDBClient.
// Tables have a single string partition key. Expressions are resolved for the small
// grammar the stores use: equality key conditions, attribute_exists/attribute_not_exists
// conditions and SET updates.
type DynamoDBClient struct {
	mu     sync.RWMutex
	tables map[string]*table
	fail   map[string]error
	calls  []string
}

// NewDynamoDBClient creates an empty mock.
func NewDynamoDBClient() *DynamoDBClient {
	return &DynamoDBClient{
		tables: make(map[string]*table),
		fail:   make(map[string]error),
	}
}

// CreateTable registers a table keyed by keyAttr.
func (m *DynamoDBClient) CreateTable(name, keyAttr string) *DynamoDBClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tables[name] = &table{keyAttr: keyAttr, items: make(map[string]map[string]types.AttributeValue)}

	return m
}

// FailNext makes the next call of op (e.g. "PutItem") return err.
func (m *DynamoDBClient) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fail[op] = err
}

// Calls returns the operation names in call order.
func (m *DynamoDBClient) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.calls...)
}

// Item returns a stored item or nil.
func (m *DynamoDBClient) Item(tableName, key string) map[string]types.AttributeValue {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if t, ok := m.tables[tableName]; ok {
		return t.items[key]
	}

	return nil
}

// Len returns the number of items in a table.
func (m *DynamoDBClient) Len(tableName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if t, ok := m.tables[tableName]; ok {
		return len(t.items)
	}

	return 0
}

// begin records the call and returns the table or an injected failure.
// Callers must hold m.mu.
func (m *DynamoDBClient) begin(op string, tableName *string) (*table, error) {
	m.calls = append(m.calls, op)

	if err, ok := m.fail[op]; ok {
		delete(m.fail, op)

		return nil, err
	}

	t, ok := m.tables[aws.ToString(tableName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found: " + aws.ToString(tableName))}
	}

	return t, nil
}

func keyOf(t *table, item map[string]types.AttributeValue) (string, error) {
	v, ok := item[t.keyAttr].(*types.AttributeValueMemberS)
	if !ok || v.Value == "" {
		return "", fmt.Errorf("mock: missing key attribute %s", t.keyAttr) //nolint:err113
	}

	return v.Value, nil
}

func resolveName(ref string, names map[string]string) string {
	ref = strings.TrimSpace(ref)
	if n, ok := names[ref]; ok {
		return n
	}

	return ref
}

// checkCondition evaluates attribute_exists(x) / attribute_not_exists(x).
func checkCondition(expr *string, names map[string]string, current map[string]types.AttributeValue) error {
	if expr == nil {
		return nil
	}

	e := strings.TrimSpace(*expr)

	var (
		fn  string
		arg string
	)

	if open := strings.Index(e, "("); open > 0 && strings.HasSuffix(e, ")") {
		fn = strings.TrimSpace(e[:open])
		arg = resolveName(e[open+1:len(e)-1], names)
	}

	_, exists := current[arg]

	switch {
	case fn == "attribute_exists" && exists, fn == "attribute_not_exists" && !exists:
		return nil
	case fn == "attribute_exists", fn == "attribute_not_exists":
		return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	default:
		return fmt.Errorf("mock: unsupported condition %q", e) //nolint:err113
	}
}

// GetItem implements awsclient.DynamoDBClient.
func (m *DynamoDBClient) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.begin("GetItem", params.TableName)
	if err != nil {
		return nil, err
	}

	k, err := keyOf(t, params.Key)
	if err != nil {
		return nil, err
	}

	return &dynamodb.GetItemOutput{Item: copyItem(t.items[k])}, nil
}

// PutItem implements awsclient.DynamoDBClient.
func (m *DynamoDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.begin("PutItem", params.TableName)
	if err != nil {
		return nil, err
	}

	k, err := keyOf(t, params.Item)
	if err != nil {
		return nil, err
	}

	if err = checkCondition(params.ConditionExpression, params.ExpressionAttributeNames, t.items[k]); err != nil {
		return nil, err
	}

	if _, ok := t.items[k]; !ok {
		t.order = append(t.order, k)
	}

	t.items[k] = copyItem(params.Item)

	return &dynamodb.PutItemOutput{}, nil
}

// UpdateItem implements awsclient.DynamoDBClient. Only SET clauses are applied.
func (m *DynamoDBClient) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.begin("UpdateItem", params.TableName)
	if err != nil {
		return nil, err
	}

	k, err := keyOf(t, params.Key)
	if err != nil {
		return nil, err
	}

	if err = checkCondition(params.ConditionExpression, params.ExpressionAttributeNames, t.items[k]); err != nil {
		return nil, err
	}

	item, ok := t.items[k]
	if !ok {
		item = copyItem(params.Key)
		t.items[k] = item
		t.order = append(t.order, k)
	}

	expr := strings.TrimSpace(aws.ToString(params.UpdateExpression))
	if rest, found := strings.CutPrefix(expr, "SET "); found {
		for _, assignment := range strings.Split(rest, ",") {
			name, value, ok := strings.Cut(assignment, "=")
			if !ok {
				return nil, fmt.Errorf("mock: unsupported update %q", assignment) //nolint:err113
			}

			v, ok := params.ExpressionAttributeValues[strings.TrimSpace(value)]
			if !ok {
				return nil, fmt.Errorf("mock: missing value %s", value) //nolint:err113
			}

			item[resolveName(name, params.ExpressionAttributeNames)] = v
		}
	}

	out := &dynamodb.UpdateItemOutput{}
	if params.ReturnValues == types.ReturnValueAllNew {
		out.Attributes = copyItem(item)
	}

	return out, nil
}

// DeleteItem implements awsclient.DynamoDBClient.
func (m *DynamoDBClient) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.begin("DeleteItem", params.TableName)
	if err != nil {
		return nil, err
	}

	k, err := keyOf(t, params.Key)
	if err != nil {
		return nil, err
	}

	if err = checkCondition(params.ConditionExpression, params.ExpressionAttributeNames, t.items[k]); err != nil {
		return nil, err
	}

	delete(t.items, k)

	for i, o := range t.order {
		if o == k {
			t.order = append(t.order[:i], t.order[i+1:]...)

			break
		}
	}

	return &dynamodb.DeleteItemOutput{}, nil
}

// Query implements awsclient.DynamoDBClient for "name = :value" key conditions on any attribute.
func (m *DynamoDBClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.begin("Query", params.TableName)
	if err != nil {
		return nil, err
	}

	name, value, ok := strings.Cut(aws.ToString(params.KeyConditionExpression), "=")
	if !ok {
		return nil, fmt.Errorf("mock: unsupported key condition %q", aws.ToString(params.KeyConditionExpression)) //nolint:err113
	}

	attr := resolveName(name, params.ExpressionAttributeNames)

	want, ok := params.ExpressionAttributeValues[strings.TrimSpace(value)].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("mock: key condition value must be a string") //nolint:err113
	}

	var items []map[string]types.AttributeValue

	for _, k := range t.order {
		if got, ok := t.items[k][attr].(*types.AttributeValueMemberS); ok && got.Value == want.Value {
			items = append(items, copyItem(t.items[k]))
		}

		if params.Limit != nil && len(items) >= int(*params.Limit) {
			break
		}
	}

	return &dynamodb.QueryOutput{Items: items, Count: int32(len(items))}, nil //nolint:gosec
}

// Scan implements awsclient.DynamoDBClient in insertion order.
func (m *DynamoDBClient) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.begin("Scan", params.TableName)
	if err != nil {
		return nil, err
	}

	var items []map[string]types.AttributeValue

	for _, k := range t.order {
		if params.Limit != nil && len(items) >= int(*params.Limit) {
			break
		}

		items = append(items, copyItem(t.items[k]))
	}

	return &dynamodb.ScanOutput{Items: items, Count: int32(len(items))}, nil //nolint:gosec
}

func copyItem(in map[string]types.AttributeValue) map[string]types.AttributeValue {
	if in == nil {
		return nil
	}

	out := make(map[string]types.AttributeValue, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}
