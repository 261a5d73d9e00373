package client

var CoHistory = coHistory
