// Package dynamodb provides an Amazon DynamoDB implementation of driven.ItemStore.
//
// Items are marshalled with the attributevalue package and keyed by a single
// string partition key. PutItem replaces the stored item wholesale.
package dynamodb
