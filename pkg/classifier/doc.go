/*
Package classifier provides the default ports.TextClassifier of switchboard.

It is a one-vs-rest logistic regression over bag-of-words features (unigrams and
bigrams of normalized tokens). There is no intercept term, so a text that shares no
feature with the training samples scores zero for every label instead of inheriting a
label prior. Training is deterministic: weights start at zero and samples are visited
in insertion order.

	c := classifier.New()
	c.Add("hello", "greet")
	c.Add("i want a pizza", "order")
	if err := c.Train(ctx); err != nil {
		return err
	}
	ranked, err := c.Classify("hello there")
*/
package classifier
